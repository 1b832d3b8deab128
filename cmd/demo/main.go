package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kass/go-rail-geo/pkg/geom"
	"github.com/kass/go-rail-geo/pkg/index"
	"github.com/kass/go-rail-geo/pkg/models"
	"github.com/kass/go-rail-geo/pkg/proximity"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)
)

type stage int

const (
	stageIndexing stage = iota
	stageWithin
	stageNearest
	stageDelay
	stageDone
)

type model struct {
	stage   stage
	spinner spinner.Model

	dataset *models.Dataset
	ri      *index.RailIndex

	matches     []proximity.Match
	withinTime  time.Duration
	nearest     *models.Station
	nearestTime time.Duration
	avgDelay    float64
	err         error
}

type indexedMsg struct {
	ri *index.RailIndex
}

type withinMsg struct {
	matches []proximity.Match
	elapsed time.Duration
}

type nearestMsg struct {
	station *models.Station
	elapsed time.Duration
}

type delayMsg struct {
	avg float64
}

type errMsg struct {
	err error
}

const (
	demoThresholdMeters = 1000
	demoDelayRadius     = 1500
)

// Query point between Ostrava and Frydlant, next to line 323.
var demoQuery = geom.Point{Lon: 18.30, Lat: 49.70}

func main() {
	ds, err := sampleDataset()
	if err != nil {
		log.Fatalf("Failed to build sample dataset: %v", err)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#BD93F9"))

	m := model{
		stage:   stageIndexing,
		spinner: s,
		dataset: ds,
	}

	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatalf("Demo failed: %v", err)
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, buildIndex(m.dataset))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case indexedMsg:
		m.ri = msg.ri
		m.stage = stageWithin
		return m, runWithin(m.ri, m.dataset)

	case withinMsg:
		m.matches = msg.matches
		m.withinTime = msg.elapsed
		m.stage = stageNearest
		return m, runNearest(m.ri)

	case nearestMsg:
		m.nearest = msg.station
		m.nearestTime = msg.elapsed
		m.stage = stageDelay
		return m, runDelay(m.dataset)

	case delayMsg:
		m.avgDelay = msg.avg
		m.stage = stageDone
		return m, nil

	case errMsg:
		m.err = msg.err
		m.stage = stageDone
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Railway Proximity Demo"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Dataset: %d stations, %d lines (Moravian-Silesian region)",
		len(m.dataset.Stations), len(m.dataset.Lines))))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(boxStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n" + dimStyle.Render("Press q to quit") + "\n")
		return b.String()
	}

	if m.stage == stageIndexing {
		b.WriteString(fmt.Sprintf("\n%s Building R-Tree index...\n", m.spinner.View()))
		return b.String()
	}

	if m.stage >= stageWithin {
		section := subtitleStyle.Render(fmt.Sprintf("Stations within %dm of a line", demoThresholdMeters)) + "\n"
		if m.stage == stageWithin {
			section += fmt.Sprintf("%s running...\n", m.spinner.View())
		} else {
			for _, match := range m.matches {
				section += fmt.Sprintf("  %s %s  %s  %s\n",
					successStyle.Render("•"),
					match.Station.Name,
					dimStyle.Render("on "+match.Line.Name),
					infoStyle.Render(fmt.Sprintf("%.0f m", match.Meters)))
			}
			section += dimStyle.Render(fmt.Sprintf("  %d pairs in %v", len(m.matches), m.withinTime)) + "\n"
		}
		b.WriteString(boxStyle.Render(section))
	}

	if m.stage >= stageNearest {
		section := subtitleStyle.Render(fmt.Sprintf("Nearest station to (%.2f, %.2f)", demoQuery.Lon, demoQuery.Lat)) + "\n"
		if m.stage == stageNearest {
			section += fmt.Sprintf("%s running...\n", m.spinner.View())
		} else {
			section += fmt.Sprintf("  %s %s  %s\n",
				successStyle.Render("→"),
				m.nearest.Name,
				dimStyle.Render(fmt.Sprintf("found in %v", m.nearestTime)))
		}
		b.WriteString(boxStyle.Render(section))
	}

	if m.stage >= stageDelay {
		section := subtitleStyle.Render("Average delay along line 323") + "\n"
		if m.stage == stageDelay {
			section += fmt.Sprintf("%s running...\n", m.spinner.View())
		} else {
			section += fmt.Sprintf("  %s\n", infoStyle.Render(fmt.Sprintf("%.1f min", m.avgDelay)))
		}
		b.WriteString(boxStyle.Render(section))
	}

	if m.stage == stageDone {
		b.WriteString("\n" + dimStyle.Render("Press q to quit") + "\n")
	}

	return b.String()
}

func buildIndex(ds *models.Dataset) tea.Cmd {
	return func() tea.Msg {
		ri, err := index.New(ds)
		if err != nil {
			return errMsg{err}
		}
		return indexedMsg{ri}
	}
}

func runWithin(ri *index.RailIndex, ds *models.Dataset) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		matches, err := ri.WithinDistance(ds.Stations, demoThresholdMeters)
		if err != nil {
			return errMsg{err}
		}
		return withinMsg{matches: matches, elapsed: time.Since(start)}
	}
}

func runNearest(ri *index.RailIndex) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		st, err := ri.NearestStation(demoQuery)
		if err != nil {
			return errMsg{err}
		}
		return nearestMsg{station: st, elapsed: time.Since(start)}
	}
}

func runDelay(ds *models.Dataset) tea.Cmd {
	return func() tea.Msg {
		avg, err := proximity.AverageDelayAlong(ds.Lines[0], ds.Stations, demoDelayRadius)
		if err != nil {
			return errMsg{err}
		}
		return delayMsg{avg}
	}
}

// sampleDataset builds the bundled demo data: railway line 323 through the
// Moravian-Silesian region and its four stations.
func sampleDataset() (*models.Dataset, error) {
	stationData := []struct {
		name     string
		lon, lat float64
		delay    float64
	}{
		{"Ostrava hl.n.", 18.2917, 49.8465, 5},
		{"Frydlant n.O.", 18.3582, 49.6645, 8},
		{"Celadna", 18.3615, 49.5760, 3},
		{"Frenstat p.R.", 18.2140, 49.5601, 10},
	}

	ds := &models.Dataset{}
	for _, sd := range stationData {
		loc, err := geom.NewPoint(sd.lon, sd.lat)
		if err != nil {
			return nil, err
		}
		ds.Stations = append(ds.Stations, &models.Station{
			Name:     sd.name,
			Location: loc,
			AvgDelay: sd.delay,
		})
	}

	coords := [][2]float64{
		{18.2917, 49.8465},
		{18.3582, 49.6645},
		{18.3615, 49.5760},
		{18.2140, 49.5601},
	}
	points := make([]geom.Point, 0, len(coords))
	for _, c := range coords {
		p, err := geom.NewPoint(c[0], c[1])
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	path, err := geom.NewPolyline(points)
	if err != nil {
		return nil, err
	}

	ds.Lines = append(ds.Lines, &models.Line{
		Name:        "Line 323",
		Description: "Ostrava - Valasske Mezirici regional line",
		Path:        path,
	})

	return ds, nil
}
