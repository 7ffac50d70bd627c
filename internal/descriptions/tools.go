package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	FormValidateFileDescription = `Validate a tax form annotation document for structural and geometric consistency.

**When to use:** Before binding data into a form layout, after editing an annotation document, or when authoring new form definitions.

**Why it's useful:** Catches malformed documents early: duplicate identifiers, fields escaping their sections, segment boxes overlapping, and data bindings pointing at fields that cannot hold them.

**Examples:**
• Authoring check: "Validate f1040.json after adding the dependents section"
• Regression gate: "Validate all documents in forms/ before publishing a release"
• Diagnosis: "Find out why the SSN field renders outside its section on page 1"

**Common workflows:**
1. Authoring: Edit document → Validate → Fix findings → Re-validate
2. CI Gate: Validate each document → Reject on errors → Publish on clean report
3. Migration: Import layout → Validate → Review warnings → Accept or adjust

**Best practices:** Treat error findings as blocking; warnings are advisory (pattern length mismatches, text fields carrying data sources) and safe to ship after review.`

	FormBindFileDescription = `Resolve a taxpayer data tree into a validated form layout, producing positioned field instances.

**When to use:** Rendering a filled form, previewing how data lands in the layout, or auditing which fields a data tree can populate.

**Why it's useful:** Walks every field's data source path through the data tree, checks the value against the field's input mode and constraints, splits segmented values like SSNs into per-box pieces, and reports a per-field status instead of failing the whole run.

**Examples:**
• Fill preview: "Bind taxpayer.json into f1040.json and list fields with missing data"
• Render pipeline: "Bind data and hand the positioned instances to the PDF writer"
• Data audit: "Which fields end up constraint_violation when binding last year's return?"

**Common workflows:**
1. Render: Validate → Bind → Draw instances in z-order → Emit filled PDF
2. Data QA: Bind → Group instances by status → Report gaps to the data team
3. Debugging: Bind one document → Inspect a field's resolved segments and absolute position

**Best practices:** A structurally invalid document still binds in degraded mode; check the report's error count before trusting positions.`

	FormInspectPDFDescription = `Cross-check a form annotation document against its source PDF's page geometry.

**When to use:** After authoring a layout against a real IRS PDF, or when a rendered overlay drifts from the printed form.

**Why it's useful:** Compares declared page counts and page dimensions (converted to points) with what the PDF actually reports, catching unit mistakes and wrong page sizes before they shift every field on the page.

**Examples:**
• Authoring check: "Does f1040.json match the page size of f1040.pdf?"
• Drift diagnosis: "The overlay is shifted; confirm the document's page dimensions against the source"
• Batch audit: "Cross-check every layout in forms/ against its PDF"

**Common workflows:**
1. Authoring: Measure PDF → Declare page size → Inspect → Fix mismatches
2. Regression: Re-inspect after PDF revisions → Catch silently changed page boxes
3. Support: Reproduce a drift report → Inspect → Identify the mis-declared page

**Best practices:** Dimensions are compared within half a point; anything larger is a real mismatch, not rounding.`

	FormServerInfoDescription = `Get server status, available tools, and engine configuration.

**When to use:** Starting a session with the annotation engine, troubleshooting, or discovering capabilities.

**Why it's useful:** Reports the engine version, configured limits, and the full tool list so clients can plan their workflow.

**Examples:**
• Session startup: "Check the engine is ready before batch validation"
• Debugging: "Confirm the configured file size limit and PDF backend"

**Common workflows:**
1. Session Startup: Check server info → Verify tools → Begin processing
2. Debugging: Review configuration → Adjust limits → Retry

**Best practices:** Run once at session start; the tool list is stable for the life of the process.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"form_validate_file": FormValidateFileDescription,
	"form_bind_file":     FormBindFileDescription,
	"form_inspect_pdf":   FormInspectPDFDescription,
	"form_server_info":   FormServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
