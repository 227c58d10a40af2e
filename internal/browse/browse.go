// Package browse is a read-only terminal UI over the normalized jobs table:
// a scrollable list with a detail view per job.
package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avelez-dev/jobradar/internal/model"
)

var (
	badgeStyles = map[model.Seniority]lipgloss.Style{
		model.SeniorityJunior: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		model.SeniorityMid:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		model.SenioritySenior: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	}

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

// jobItem adapts a NormalizedJob to the bubbles list.
type jobItem struct {
	job model.NormalizedJob
}

func (i jobItem) Title() string {
	title := i.job.Title
	if !i.job.IsActive {
		title = inactiveStyle.Render(title + " (expired)")
	}
	badge := badgeStyles[i.job.Seniority].Render("[" + string(i.job.Seniority) + "]")
	return badge + " " + title
}

func (i jobItem) Description() string {
	loc := i.job.City
	if i.job.StateCode != "" {
		loc += ", " + i.job.StateCode
	}
	if i.job.IsRemote {
		loc += " (remote)"
	}
	return fmt.Sprintf("%s — %s", i.job.Company, loc)
}

func (i jobItem) FilterValue() string {
	return i.job.Title + " " + i.job.Company + " " + i.job.City
}

type browseModel struct {
	list     list.Model
	detail   viewport.Model
	view     viewState
	width    int
	height   int
	selected model.NormalizedJob
}

func newBrowseModel(jobs []model.NormalizedJob) browseModel {
	items := make([]list.Item, len(jobs))
	for i, j := range jobs {
		items[i] = jobItem{job: j}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("Jobs (%d)", len(jobs))
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)

	return browseModel{list: l}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-2, msg.Height-2)
		m.detail.Width = msg.Width - 4
		m.detail.Height = msg.Height - 4
		if m.view == viewDetail {
			m.detail.SetContent(renderDetail(m.selected))
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the list filter input is active, every key belongs to it.
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		if item, ok := m.list.SelectedItem().(jobItem); ok {
			m.selected = item.job
			m.view = viewDetail
			m.detail.SetContent(renderDetail(m.selected))
			m.detail.SetYOffset(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	if m.view == viewDetail {
		hint := detailHintStyle.Render("↑/↓ scroll  esc back  q quit")
		return lipgloss.NewStyle().Padding(1, 2).Render(m.detail.View() + "\n" + hint)
	}
	return lipgloss.NewStyle().Padding(1, 1).Render(m.list.View())
}

func renderDetail(j model.NormalizedJob) string {
	var b strings.Builder
	b.WriteString(detailTitleStyle.Render(j.Title) + "\n")

	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label) + value + "\n")
	}

	status := "active"
	if !j.IsActive {
		status = "expired"
	}

	row("Company", j.Company)
	row("Location", j.Location)
	row("City", j.City)
	row("State", j.StateCode)
	row("Metro code", j.CBSACode)
	row("Category", j.CategoryLabel)
	row("Industry", j.Industry)
	row("Seniority", string(j.Seniority))
	row("Job type", j.JobType)
	if j.YOEMin > 0 {
		row("Min YOE", fmt.Sprintf("%d years", j.YOEMin))
	}
	row("Education", j.Education)
	if j.HasSalary {
		row("Salary", fmt.Sprintf("$%.0f – $%.0f", j.SalaryMin, j.SalaryMax))
	}
	if j.IsRemote {
		row("Remote", "yes")
	}
	row("Status", status)
	row("Source", string(j.Source))
	if !j.PostDate.IsZero() {
		row("Posted", j.PostDate.Format(model.DateFormat))
	}
	row("First seen", j.FirstSeen.Format(model.DateFormat))
	row("Last seen", j.LastSeen.Format(model.DateFormat))
	row("Days seen", fmt.Sprintf("%d", j.TimesSeen))
	row("URL", j.URL)

	return b.String()
}

// Run shows the job browser and blocks until the user quits.
func Run(jobs []model.NormalizedJob) error {
	p := tea.NewProgram(newBrowseModel(jobs), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
