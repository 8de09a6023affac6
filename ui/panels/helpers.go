package panels

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2/widget"
)

func setIfEmpty(e *widget.Entry, text string) {
	if strings.TrimSpace(e.Text) == "" && text != "" {
		e.SetText(text)
	}
}

func pluralRecords(n int) string {
	return fmt.Sprintf("%d records in catalog", n)
}
