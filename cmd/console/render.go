package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/casefile/internal/game"
	"github.com/jwebster45206/casefile/pkg/gate"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

func renderEvidence(v *game.View, casesDir string, width int) string {
	width = max(width, 20)

	var b strings.Builder
	b.WriteString(titleStyle.Render("EVIDENCE") + "\n\n")

	if v == nil || len(v.Evidence) == 0 {
		b.WriteString(wordwrap.String("Enter a location such as 237NW to search the case file.", width) + "\n")
		return b.String()
	}

	for i, u := range v.Evidence {
		n := fmt.Sprintf("[%d] ", i+1)
		path := filepath.Join(casesDir, filepath.FromSlash(u.Path))

		switch {
		case u.Kind == gate.KindInert:
			b.WriteString(n + errorStyle.Render(u.Filename+" (unreadable rule)") + "\n")
		case u.Open:
			b.WriteString(n + openStyle.Render(u.Filename) + "\n")
			b.WriteString(wordwrap.String("    "+path, width) + "\n")
		default:
			b.WriteString(n + lockedStyle.Render(u.Label) + "\n")
			b.WriteString(promptStyle.Render(fmt.Sprintf("    :open %d", i+1)) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderMeta(v *game.View, width int) string {
	width = max(width, 10)

	var b strings.Builder
	caseLabel := "No case selected"
	if v != nil && v.CaseLabel != "" {
		caseLabel = v.CaseLabel
	}
	b.WriteString(titleStyle.Render(upper.String(caseLabel)) + "\n\n")

	if v == nil {
		return b.String()
	}

	b.WriteString(labelStyle.Render(pluralLeads(len(v.Leads))) + "\n")
	if len(v.Leads) == 0 {
		b.WriteString("None yet\n")
	}
	for _, lead := range v.Leads {
		line := "• " + lead
		if reqs := v.Requirements[lead]; len(reqs) > 0 {
			line += " " + lockedStyle.Render("["+strings.Join(reqs, " ")+"]")
		}
		b.WriteString(line + "\n")
	}

	if len(v.Fails) > 0 {
		b.WriteString("\n" + labelStyle.Render("Dead ends") + "\n")
		b.WriteString(wordwrap.String(strings.Join(v.Fails, ", "), width) + "\n")
	}

	b.WriteString("\n" + labelStyle.Render("Letters") + "\n")
	if len(v.Letters) == 0 {
		b.WriteString("None yet\n")
	} else {
		marks := make([]string, 0, len(v.Letters))
		for _, l := range v.Letters {
			if l.Removed {
				marks = append(marks, removedStyle.Render(l.Letter))
			} else {
				marks = append(marks, l.Letter)
			}
		}
		b.WriteString(strings.Join(marks, " ") + "\n")
	}

	b.WriteString("\n" + promptStyle.Render(":help for commands") + "\n")
	return b.String()
}

func renderHelp() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("COMMANDS") + "\n\n")
	b.WriteString(`237NW / NW237     Search a location
:case N           Select case N (1-10)
:go LEAD          Search a found lead again
:letter X         Record letter X
:cross X          Cross out letter X
:restore X        Restore a crossed-out letter
:req LEAD X       Note that LEAD needs letter X
:unreq LEAD X     Remove a note
:open N           Open gated evidence N
:copy             Copy found leads to the clipboard
:reset            Delete all progress
:help             Toggle this help
:quit             Quit (Ctrl+C)
`)
	return b.String()
}

func pluralLeads(n int) string {
	if n == 1 {
		return "1 lead"
	}
	return fmt.Sprintf("%d leads", n)
}
