package analyze

import (
	"fmt"
	"strings"
)

// PlanSourceChars is how much of the source the plan prompt quotes.
const PlanSourceChars = 1000

const analysisFrame = `Analyze the following markdown meeting minutes and extract the structural information needed to turn them into a Word document.

%s

Locally detected outline:
%s

Report the analysis in this layout:

## Meeting
- Title:
- Date and time:
- Attendees:
- Duration:

## Main sections
1. Section name and a one-line summary of its content
2. ...

## Key points
- Number of decisions:
- Number of action items:
- Number of discussion points:

## Proposed Word layout
1. Cover page content
2. Table of contents
3. Body layout
4. Whether an appendix is needed`

const planFrame = `Using the markdown meeting minutes and their analysis below, write a concrete step-by-step plan for building the Word document with a document-construction tool server.

## Source minutes (excerpt):
%s

## Structure analysis:
%s

Express each step as tool commands, for example:

### Step 1: create the document
create_document: "minutes_[meeting]_[date].docx"
set_page_margins: {"top": 2.5, "bottom": 2.5, "left": 3.0, "right": 2.5}

### Step 2: cover page
add_title: "[meeting title]"
add_subtitle: "Minutes"
add_page_break

### Step 3: body structure
add_heading1: "1. Overview"
add_table: meeting details
...

### Step 4: content
How each section, list and table is inserted and formatted.

### Step 5: finishing
Header, footer, page numbers and a generated table of contents.`

const renderFrame = `Build a Word document from the markdown meeting minutes below by following the generation plan, using the document-construction tools available to you (create_document, add_heading, add_paragraph, add_table, set_formatting, save_document).

## Markdown minutes:
%s

## Generation plan:
%s

Create the document step by step, save it, and reply with the full path of the saved file.`

// BuildAnalysisPrompt embeds the whole source plus the locally computed
// outline.
func BuildAnalysisPrompt(source, outline string) string {
	return fmt.Sprintf(analysisFrame, source, outline)
}

// BuildPlanPrompt quotes only the first PlanSourceChars characters of the
// source.
func BuildPlanPrompt(source, analysis string) string {
	return fmt.Sprintf(planFrame, excerpt(source, PlanSourceChars), analysis)
}

func BuildRenderPrompt(source, plan string) string {
	return fmt.Sprintf(renderFrame, source, plan)
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimRight(string(runes[:n]), " \n") + "..."
}
