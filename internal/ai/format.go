package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/flower-resume/internal/types"
)

// MaxJobDescriptionChars caps the job description embedded in a prompt.
const MaxJobDescriptionChars = 12000

const noneProvided = "(none provided)"

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return noneProvided
	}
	return s
}

func jobDescription(s string) string {
	return orNone(truncate(s, MaxJobDescriptionChars))
}

func formatPersonalInfo(p types.PersonalInfo) string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	add("Name", p.FullName)
	add("Title", p.JobTitle)
	add("Location", p.Location)
	return orNone(strings.Join(lines, "\n"))
}

func formatDates(e types.Experience) string {
	end := e.EndDate
	if e.Current {
		end = "Present"
	}
	switch {
	case e.StartDate == "" && end == "":
		return ""
	case e.StartDate == "":
		return end
	case end == "":
		return e.StartDate
	default:
		return e.StartDate + " - " + end
	}
}

func formatExperience(entries []types.Experience) string {
	if len(entries) == 0 {
		return noneProvided
	}
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%s at %s", e.JobTitle, e.Company)
		if dates := formatDates(e); dates != "" {
			fmt.Fprintf(&sb, " (%s)", dates)
		}
		if d := strings.TrimSpace(e.Description); d != "" {
			sb.WriteString("\n")
			sb.WriteString(d)
		}
	}
	return sb.String()
}

func formatSkills(skills []types.Skill) string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		if s.Level != "" {
			names = append(names, fmt.Sprintf("%s (%s)", s.Name, s.Level))
		} else {
			names = append(names, s.Name)
		}
	}
	return orNone(strings.Join(names, ", "))
}
