package services

import (
	"context"
	"strings"

	"publishing-ops-api/config"
)

const defaultColumns = "A:Z"

// SheetNameFromRange returns the tab name of an A1 range such as
// "'Texas Authors'!A1:K", or "" when the range has no tab part.
func SheetNameFromRange(rng string) string {
	rng = strings.TrimSpace(rng)
	idx := strings.LastIndex(rng, "!")
	if idx < 0 {
		return ""
	}
	return unquoteSheetName(rng[:idx])
}

func unquoteSheetName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 2 && strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'") {
		name = strings.ReplaceAll(name[1:len(name)-1], "''", "'")
	}
	return strings.Trim(name, "'")
}

func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// ResolveSheetRange picks the range to read. An explicit range wins; a bare
// sheet name reads its A:Z columns; with neither, the first tab is looked up.
func ResolveSheetRange(ctx context.Context, cfg config.SheetsConfig, firstTitle func(context.Context) (string, error)) (string, error) {
	if rng := strings.TrimSpace(cfg.Range); rng != "" {
		return rng, nil
	}

	sheet := strings.TrimSpace(cfg.SheetName)
	if strings.Contains(sheet, "!") {
		sheet = SheetNameFromRange(sheet)
	} else {
		sheet = unquoteSheetName(sheet)
	}

	if sheet == "" {
		title, err := firstTitle(ctx)
		if err != nil {
			return "", err
		}
		sheet = title
	}
	return quoteSheetName(sheet) + "!" + defaultColumns, nil
}
