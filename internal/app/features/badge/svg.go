// internal/app/features/badge/svg.go
package badge

import "fmt"

const (
	labelText  = "status"
	openText   = "open to work"
	closedText = "not looking"
	openFill   = "#2ea44f"
	closedFill = "#9f9f9f"
)

// Fixed layout: 50px label cell, 90px value cell.
const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="140" height="20" role="img" aria-label="%[1]s: %[2]s">` +
	`<title>%[1]s: %[2]s</title>` +
	`<rect width="50" height="20" fill="#555"/>` +
	`<rect x="50" width="90" height="20" fill="%[3]s"/>` +
	`<g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" font-size="11">` +
	`<text x="25" y="14">%[1]s</text>` +
	`<text x="95" y="14">%[2]s</text>` +
	`</g></svg>`

func render(open bool) []byte {
	text, fill := closedText, closedFill
	if open {
		text, fill = openText, openFill
	}
	return []byte(fmt.Sprintf(svgTemplate, labelText, text, fill))
}
