package workspace

import "fmt"

type noticeText struct {
	title, description string
}

var (
	noticeRestored       = noticeText{"Diagram Loaded", "Restored your last saved diagram."}
	noticeLoaded         = noticeText{"Diagram Loaded", "Loaded your last saved diagram."}
	noticeLoadError      = noticeText{"Load Error", "No diagram found in local storage."}
	noticeSaved          = noticeText{"Diagram Saved", "Your current diagram has been saved locally."}
	noticeEmptyPrompt    = noticeText{"Error", "Please enter a description for the diagram."}
	noticeGenerated      = noticeText{"Diagram Generated", "Mermaid code generated from your description."}
	noticeGenerateError  = noticeText{"AI Generation Error", "Could not generate diagram. Please try again."}
	noticeRepairChecked  = noticeText{"Syntax Checked", "No errors found or code repaired."}
	noticeRepairError    = noticeText{"Syntax Repair Error", "Could not repair syntax."}
	noticeSuggestError   = noticeText{"Suggestion Error", "Could not fetch suggestions."}
	noticeExportedSVG    = noticeText{"Exported as SVG", "Diagram saved as diagram.svg"}
	noticeExportedPNG    = noticeText{"Exported as PNG", "Diagram saved as diagram.png"}
	noticeNoExport       = noticeText{"Export Error", "No diagram to export."}
	noticePNGError       = noticeText{"Export Error", "No diagram to export or SVG content is invalid."}
	noticeAssistDisabled = noticeText{"AI Unavailable", "No AI provider is configured."}
)

func noticeRepaired(explanation string) noticeText {
	return noticeText{"Syntax Repaired", explanation}
}

func noticeTheme(theme string) noticeText {
	return noticeText{"Diagram Theme Changed", fmt.Sprintf("Switched to %s theme.", theme)}
}

func noticeFont(font string) noticeText {
	return noticeText{"Diagram Font Changed", fmt.Sprintf("Switched to %s font.", font)}
}

func noticeMaxWidth(on bool) noticeText {
	if on {
		return noticeText{"Flowchart Width Changed", "Flowcharts now fit the available width."}
	}
	return noticeText{"Flowchart Width Changed", "Flowcharts now render at their natural width."}
}
