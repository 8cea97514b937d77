package replay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// Header and footer styles
var (
	pagerTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	pagerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	pagerHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))
)

// recentBeats is how many preceding beats the pane lists for context.
const recentBeats = 5

func (m *stepperModel) View() string {
	if !m.ready {
		return "\n  Loading..."
	}
	return m.header() + "\n" + m.viewport.View() + "\n" + m.footer()
}

func (m *stepperModel) header() string {
	tl := m.timeline()
	name := tl.Log.GameID
	if name == "" {
		name = "Game"
	}
	title := pagerTitleStyle.Render(fmt.Sprintf("%s │ %s", name, strings.ToUpper(string(tl.Mode))))

	var info []string
	if m.driver.Playing() {
		info = append(info, successStyle.Render("▶ playing"))
	} else {
		info = append(info, dimStyle.Render("❚❚ paused"))
	}
	info = append(info, fmt.Sprintf("%.2gx", m.speed))
	if m.view.Phase != "" {
		info = append(info, "phase: "+timeline.PhaseLabel(m.view.Phase))
	}
	if m.view.Player != "" {
		info = append(info, "focus: "+m.view.Player)
	}
	if m.live {
		info = append(info, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Render("● LIVE"))
	}
	infoStr := " " + strings.Join(info, " │ ") + " "

	line := strings.Repeat("─", max(0, m.viewport.Width-lipgloss.Width(title)-lipgloss.Width(infoStr)))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, pagerInfoStyle.Render(infoStr), pagerInfoStyle.Render(line))
}

func (m *stepperModel) footer() string {
	if m.searching {
		searchPrompt := lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Render("/")
		return searchPrompt + m.searchInput.View()
	}

	position := fmt.Sprintf(" %d/%d ", m.driver.Index()+1, m.driver.Len())
	if m.driver.Len() == 0 {
		position = " 0/0 "
	}

	var help string
	switch {
	case m.loadErr != nil:
		help = fmt.Sprintf(" %s │ q: quit ", errorStyle.Render("reload failed: "+m.loadErr.Error()))
	case m.searchFailed:
		notFound := lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Render("Pattern not found")
		help = fmt.Sprintf(" %s │ /: search ", notFound)
	case len(m.searchHits) > 0:
		matchInfo := lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Render(fmt.Sprintf("[%d/%d]", m.searchPos+1, len(m.searchHits)))
		help = fmt.Sprintf(" %s │ n/N: next/prev │ /: search │ esc: clear ", matchInfo)
	default:
		help = " space: play │ ←/→: step │ [/]: phase │ m: mode │ r: reasoning │ f/o: filter │ /: search │ q: quit "
	}

	fill := strings.Repeat("─", max(0, m.viewport.Width-lipgloss.Width(help)-lipgloss.Width(position)))
	return pagerHelpStyle.Render(help) + pagerInfoStyle.Render(fill) + pagerInfoStyle.Render(position)
}

// renderBeat renders the current beat with its derived state.
func (m *stepperModel) renderBeat(width int) string {
	tl := m.timeline()
	b, ok := tl.Beat(m.driver.Index())
	if !ok {
		return "\n  " + dimStyle.Render("No beats to show in "+string(tl.Mode)+" mode.")
	}
	derived := tl.Derive(b.Index)
	textWidth := max(20, width-4)

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n  %s  %s\n\n",
		phaseStyle(b.Phase).Render(timeline.PhaseLabel(b.Phase)),
		dimStyle.Render(timeline.StageLabel(b.Stage)))

	label := currentStyle.Render(b.Label)
	if !b.IsPublic {
		label += " " + dimStyle.Render("[private]")
	}
	fmt.Fprintf(&sb, "  %s\n", label)

	if b.Text != "" && !b.IsProposal() {
		sb.WriteString(indent(wordwrap.String(b.Text, textWidth), "  "))
		sb.WriteString("\n")
	}
	if b.Nomination != "" {
		fmt.Fprintf(&sb, "  %s %s\n", labelStyle.Render("nominates"), voteStyle.Render(b.Nomination))
	}
	if b.Outcome != "" && b.Type != timeline.BeatGameEnd {
		fmt.Fprintf(&sb, "  %s\n", outcomeStyle(b.Outcome).Render(b.Outcome))
	}

	m.renderVotes(&sb, derived)
	m.renderDialogue(&sb, textWidth)
	m.renderNightTargets(&sb, derived)

	if m.showReasoning && tl.Mode == timeline.ModeOmniscient && b.Reasoning != "" {
		sb.WriteString("\n")
		sb.WriteString(reasoningStyle.Render(indent(wordwrap.String("» "+b.Reasoning, textWidth), "  ")))
		sb.WriteString("\n")
	}

	m.renderRoster(&sb, derived.Roster)
	m.renderRecent(&sb)
	return sb.String()
}

// renderVotes shows the reveal on result beats and the running ballot on
// cast beats.
func (m *stepperModel) renderVotes(sb *strings.Builder, derived timeline.Derived) {
	players := m.timeline().PlayersByName()
	seq := m.driver.Votes()

	var tokens []timeline.VoteToken
	var status string
	switch {
	case seq.Stage != "":
		tokens = m.driver.RevealedVotes()
		r := m.driver.Reveal()
		status = fmt.Sprintf("%s %d/%d", r.State, r.Revealed, r.Total)
	case derived.VoteStage != "":
		tokens = derived.VoteTokens
		status = derived.VoteStage
	default:
		return
	}

	fmt.Fprintf(sb, "\n  %s %s\n", titleStyle.Render("Ballots"), dimStyle.Render("("+status+")"))
	for _, t := range tokens {
		fmt.Fprintf(sb, "    %-12s → %s %s\n", t.Voter,
			voteStyle.Render(t.Target),
			dimStyle.Render(timeline.TokenLabel(t.Target, players)))
	}
}

func (m *stepperModel) renderDialogue(sb *strings.Builder, width int) {
	entries := m.driver.DialogueEntries()
	line, ok := m.driver.Dialogue()
	if !ok {
		return
	}
	pos := 0
	for i, e := range entries {
		if e == line {
			pos = i
			break
		}
	}
	speaker := line.Speaker
	if line.Label != "" {
		speaker = "[" + line.Label + "] " + speaker
	}
	fmt.Fprintf(sb, "\n  %s %s\n", mafiaStyle.Render(speaker+":"), dimStyle.Render(fmt.Sprintf("(%d/%d)", pos+1, len(entries))))
	sb.WriteString(mafiaDimStyle.Render(indent(wordwrap.String(line.Text, width-2), "    ")))
	sb.WriteString("\n")
}

func (m *stepperModel) renderNightTargets(sb *strings.Builder, derived timeline.Derived) {
	if len(derived.NightTargets) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n  %s\n", titleStyle.Render("Kill proposals"))
	for _, t := range derived.NightTargets {
		fmt.Fprintf(sb, "    %-12s ← %s\n", errorStyle.Render(t.Target), strings.Join(t.Proposers, ", "))
	}
}

func (m *stepperModel) renderRoster(sb *strings.Builder, roster timeline.Roster) {
	fmt.Fprintf(sb, "\n  %s %s\n", labelStyle.Render("alive:"), successStyle.Render(formatNames(roster.Living)))
	if len(roster.Dead) > 0 {
		fmt.Fprintf(sb, "  %s %s\n", labelStyle.Render("dead: "), errorStyle.Render(formatNames(roster.Dead)))
	}
	if len(roster.Nominated) > 0 {
		fmt.Fprintf(sb, "  %s %s\n", labelStyle.Render("nominated:"), warnStyle.Render(formatNames(roster.Nominated)))
	}
}

// renderRecent lists the visible beats leading up to the current one.
func (m *stepperModel) renderRecent(sb *strings.Builder) {
	tl := m.timeline()
	indexes := m.indexes()
	cur := m.driver.Index()

	end := len(indexes)
	for i, idx := range indexes {
		if idx > cur {
			end = i
			break
		}
	}
	start := max(0, end-recentBeats)
	if start == end {
		return
	}

	fmt.Fprintf(sb, "\n  %s\n", dimStyle.Render(strings.Repeat("─", 40)))
	for _, idx := range indexes[start:end] {
		b := tl.Beats[idx]
		marker := "  "
		text := dimStyle.Render(b.Label)
		if idx == cur {
			marker = "▶ "
			text = currentStyle.Render(b.Label)
		}
		fmt.Fprintf(sb, "  %s%s │ %s\n", marker, seqStyle.Render(fmt.Sprint(idx)), text)
	}
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
