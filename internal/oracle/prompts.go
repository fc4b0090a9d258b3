package oracle

import (
	"fmt"
	"strings"
)

const investigatorSystem = `You are a constable in the town of Ashvale.
You investigate crimes using only the evidence available to you.
You write honest, methodical case notes. You do not speculate beyond the evidence.
You may be wrong. Innocent citizens can be suspected. That is the nature of investigation.`

const judgeSystem = `You are the Magistrate of Ashvale, an impartial arbiter of justice.
You weigh evidence, precedent, and the town's need for both deterrence and mercy.`

const editorSystem = `You are the editor of the Ashvale Gazette.
You report only what is publicly confirmed. You do not print rumor or speculation.`

func investigationPrompt(f CaseFile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a constable in Ashvale. Today is Day %d.\n\n", f.Investigator, f.Day)
	fmt.Fprintf(&b, "CASE #%d (Opened Day %d)\n", f.CaseID, f.DayOpened)
	fmt.Fprintf(&b, "Complainant: %s\n", f.Complainant)
	fmt.Fprintf(&b, "Complaint: %s\n", f.Complaint)
	fmt.Fprintf(&b, "Days open: %d\n", f.Day-f.DayOpened)

	if len(f.Suspects) > 0 {
		fmt.Fprintf(&b, "\nCURRENT SUSPECTS: %s\n", strings.Join(f.Suspects, ", "))
	} else {
		b.WriteString("\nCURRENT SUSPECTS: None identified yet.\n")
	}

	if len(f.Evidence) > 0 {
		b.WriteString("\nEVIDENCE AVAILABLE:\n")
		for _, e := range f.Evidence {
			fmt.Fprintf(&b, "  [Day %d] [%s] %s", e.Day, e.Visibility, e.Description)
			if len(e.Witnesses) > 0 {
				fmt.Fprintf(&b, " (Witnesses: %s)", strings.Join(e.Witnesses, ", "))
			}
			b.WriteByte('\n')
		}
	} else {
		b.WriteString("\nEVIDENCE: None in the book yet. You have only the complaint.\n")
	}

	if len(f.Notes) > 0 {
		b.WriteString("\nPREVIOUS CASE NOTES:\n")
		start := 0
		if len(f.Notes) > 5 {
			start = len(f.Notes) - 5
		}
		for _, n := range f.Notes[start:] {
			fmt.Fprintf(&b, "  Day %d: %s\n", n.Day, n.Note)
		}
	}

	if len(f.Roster) > 0 {
		b.WriteString("\nCITIZENS OF ASHVALE:\n")
		for _, c := range f.Roster {
			fmt.Fprintf(&b, "  - %s (%s): %d tokens\n", c.Name, c.Role, c.Tokens)
		}
	}

	b.WriteString(`
---

Investigate this case. Use ONLY the evidence shown above; you cannot know
things that are not in the evidence. You may be wrong. Pattern-match carefully.

Consider:
- Token movements (who has benefited recently?)
- Witness accounts (even vague ones narrow the field)
- Prior behavior of suspects
- Who had motive and opportunity

Respond with JSON only, no extra text:
{
    "case_note": "2-4 sentences in your own voice: what you checked, what you noticed, what you plan next",
    "suspect": "citizen name if you have a likely suspect, or null",
    "confidence": 0.0,
    "request_arrest": false,
    "next_steps": "one sentence on what you will check tomorrow"
}

confidence: 0.0 = no idea, 0.5 = probable, 1.0 = certain.
Only set request_arrest to true if you have a named suspect and strong evidence.`)

	return b.String()
}

func closingPrompt(c Closing) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a constable in Ashvale. You are writing the final report\n", c.Investigator)
	b.WriteString("for a case you investigated. Write in first person. Be honest, including about\nwhat you got wrong, what you missed, and what you still suspect even if you couldn't prove it.\n\n")
	fmt.Fprintf(&b, "CASE #%d\nOpened: Day %d\nClosed: Day %d\n", c.CaseID, c.DayOpened, c.DayClosed)
	fmt.Fprintf(&b, "Complainant: %s\nOriginal complaint: %s\n", c.Complainant, c.Complaint)
	if len(c.Suspects) > 0 {
		fmt.Fprintf(&b, "Suspects investigated: %s\n", strings.Join(c.Suspects, ", "))
	} else {
		b.WriteString("Suspects investigated: None identified\n")
	}

	if c.Outcome == "solved" {
		fmt.Fprintf(&b, "\nOUTCOME: The case was SOLVED. %s was convicted. %s\n", c.Convicted, c.Verdict)
	} else {
		fmt.Fprintf(&b, "\nOUTCOME: The case has gone COLD. After %d days, no arrest was made.\n", c.DayClosed-c.DayOpened)
	}

	if len(c.Notes) > 0 {
		b.WriteString("\nYOUR INVESTIGATION NOTES:\n")
		for _, n := range c.Notes {
			fmt.Fprintf(&b, "Day %d: %s\n", n.Day, n.Note)
		}
	} else {
		b.WriteString("\nYOUR INVESTIGATION NOTES:\nNo investigation notes recorded.\n")
	}

	b.WriteString(`
---

Write a case report of 3-5 sentences. Include:
- What was reported and how the investigation began
- Key evidence you found (or didn't find)
- If cold: what you still believe, even without proof
- If solved: whether justice felt complete or if something still bothers you

Write as yourself. Plain prose, no JSON, no headers.`)

	return b.String()
}

func verdictPrompt(d Docket) string {
	var b strings.Builder

	b.WriteString("You are presiding over a criminal case. Review the file and deliver a fair verdict.\n\nCASE FILE:\n")
	fmt.Fprintf(&b, "Accused: %s\nVictim: %s\nAmount taken: %d tokens\nDay of crime: Day %d\nPrior offenses: %d\n", d.Accused, d.Victim, d.Amount, d.Day, d.PriorOffenses)

	b.WriteString(`
Deliver your verdict as JSON:
{
  "guilty": true,
  "fine": 0,
  "exile_days": 0,
  "reasoning": "<one sentence legal reasoning>",
  "judge_statement": "<courtroom statement for the town record>"
}

Consider:
- First offense vs repeat offender
- Amount taken relative to the victim's wealth
- Whether the victim can be compensated
- The town's need for deterrence vs rehabilitation

Set fine and exile_days to 0 if not guilty. JSON only, no extra text.`)

	return b.String()
}

func editionPrompt(e Edition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is Day %d in Ashvale. These are the publicly confirmed happenings:\n\n", e.Day)
	for _, it := range e.Items {
		fmt.Fprintf(&b, "- %s\n", it)
	}
	b.WriteString(`
Write today's edition of the Ashvale Gazette: a short column of 3-6
sentences covering the items above. Only the items above, nothing
that is not publicly confirmed. Plain prose, no markdown.`)
	return b.String()
}
