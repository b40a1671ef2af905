package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/list"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/annolens/annolens-cli/internal/api"
	"github.com/annolens/annolens-cli/internal/apperr"
)

// DatasetSelectorConfig configures the dataset selector
type DatasetSelectorConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// datasetItem represents a dataset in the list
type datasetItem struct {
	name     string
	owner    string
	task     string
	records  int
	selected bool
}

func (i datasetItem) Title() string {
	var checkbox string
	if i.selected {
		checkbox = Success.Render("[✓] ")
	} else {
		checkbox = Dim.Render("[ ] ")
	}
	return checkbox + i.name
}

func (i datasetItem) Description() string {
	return fmt.Sprintf("%s Records: %s · Task: %s",
		Dim.Render(fmt.Sprintf("by %s ·", i.owner)),
		Dim.Render(formatNumber(i.records)),
		i.task,
	)
}

func (i datasetItem) FilterValue() string { return i.name }

// datasetSelectorModel is the Bubble Tea model for the interactive selector
type datasetSelectorModel struct {
	textInput textinput.Model
	list      list.Model
	searcher  *api.DatasetSearcher

	filteredItems []list.Item
	selected      map[string]bool
	searching     bool
	searchQuery   string
	err           error
	quitting      bool
	confirmed     bool
	width         int
	height        int
}

type searchResultMsg struct {
	results []api.DatasetSearchResult
	err     error
}

type searchDebounceMsg struct{}

// NewDatasetSelector creates a new interactive dataset selector
func NewDatasetSelector(config DatasetSelectorConfig) *datasetSelectorModel {
	ti := textinput.New()
	ti.Placeholder = "Search datasets..."
	ti.Focus()
	ti.CharLimit = 156
	ti.SetWidth(50)

	searcher := &api.DatasetSearcher{
		Client:  api.NewClient(config.Timeout, config.APIKey),
		BaseURL: config.BaseURL,
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(3)
	delegate.SetSpacing(0)

	// Customize delegate styles
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorHighlight).
		BorderForeground(ColorPrimary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorTextDim).
		BorderForeground(ColorPrimary)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Select Datasets"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false) // We handle our own filtering
	l.SetShowHelp(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 0, 1, 0)

	return &datasetSelectorModel{
		textInput: ti,
		list:      l,
		searcher:  searcher,
		selected:  make(map[string]bool),
		width:     80,
		height:    24,
	}
}

// Init initializes the model
func (m *datasetSelectorModel) Init() tea.Cmd {
	// Perform initial search with empty query to get recent datasets
	return tea.Batch(
		textinput.Blink,
		m.performSearch(""),
	)
}

// Update handles messages
func (m *datasetSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't match space when typing in text input
		if m.textInput.Focused() {
			switch msg.String() {
			case "ctrl+c", "esc":
				m.quitting = true
				return m, tea.Quit
			case "enter":
				if m.textInput.Value() != "" {
					// Unfocus text input and focus list
					m.textInput.Blur()
					return m, nil
				}
			case "down", "up":
				// If we have items, switch to list navigation
				if len(m.filteredItems) > 0 {
					m.textInput.Blur()
					var cmd tea.Cmd
					m.list, cmd = m.list.Update(msg)
					return m, cmd
				}
			default:
				// Update text input and trigger debounced search
				var cmd tea.Cmd
				m.textInput, cmd = m.textInput.Update(msg)

				query := m.textInput.Value()
				if query != m.searchQuery {
					m.searchQuery = query
					// Debounce search: wait 300ms after last keystroke
					cmds = append(cmds, m.debounceSearch())
				}
				cmds = append(cmds, cmd)
				return m, tea.Batch(cmds...)
			}
		} else {
			// List is focused
			switch msg.String() {
			case "ctrl+c", "esc":
				m.quitting = true
				return m, tea.Quit
			case "enter":
				m.confirmed = true
				m.quitting = true
				return m, tea.Quit
			case "s":
				// Toggle selection
				if i, ok := m.list.SelectedItem().(datasetItem); ok {
					m.selected[i.name] = !m.selected[i.name]
					m.updateItemSelection(i.name, m.selected[i.name])
				}
				return m, nil
			case "/", "i":
				// Focus back on search input
				m.textInput.Focus()
				return m, textinput.Blink
			default:
				// Let list handle other keys (arrow keys, etc.)
				var cmd tea.Cmd
				m.list, cmd = m.list.Update(msg)
				return m, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case searchDebounceMsg:
		// Perform the search
		return m, m.performSearch(m.searchQuery)

	case searchResultMsg:
		m.searching = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		// Convert results to list items
		items := make([]list.Item, len(msg.results))
		for i, result := range msg.results {
			items[i] = datasetItem{
				name:     result.Name,
				owner:    result.Owner,
				task:     result.Task,
				records:  result.Records,
				selected: m.selected[result.Name],
			}
		}
		m.filteredItems = items
		m.list.SetItems(items)
		return m, nil
	}

	// Update list
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the model
func (m *datasetSelectorModel) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	var b strings.Builder

	// Title
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		Padding(1, 0)
	b.WriteString(titleStyle.Render("Dataset Selector"))
	b.WriteString("\n\n")

	// Search input
	searchLabel := Dim.Render("Search: ")
	b.WriteString(searchLabel)
	b.WriteString(m.textInput.View())

	if m.searching {
		b.WriteString(Dim.Render(" (searching...)"))
	}
	b.WriteString("\n\n")

	// List of datasets
	b.WriteString(m.list.View())
	b.WriteString("\n\n")

	// Selected datasets
	var selectedNames []string
	for name, selected := range m.selected {
		if selected {
			selectedNames = append(selectedNames, name)
		}
	}

	if len(selectedNames) > 0 {
		b.WriteString(fmt.Sprintf("%s %s\n",
			Success.Render("Selected:"),
			Highlight.Render(fmt.Sprintf("%d dataset(s)", len(selectedNames)))))
	}

	// Help text
	helpStyle := lipgloss.NewStyle().Foreground(ColorTextDim)
	if m.textInput.Focused() {
		b.WriteString(helpStyle.Render("↑/↓: move to list · enter: finish search · esc: cancel"))
	} else {
		b.WriteString(helpStyle.Render("s: select · ↑/↓: navigate · enter: confirm · /: search · esc: cancel"))
	}

	// Error display
	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(Error.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return tea.NewView(b.String())
}

// debounceSearch returns a command that triggers search after a delay
func (m *datasetSelectorModel) debounceSearch() tea.Cmd {
	return func() tea.Msg {
		time.Sleep(300 * time.Millisecond)
		return searchDebounceMsg{}
	}
}

// performSearch executes the search
func (m *datasetSelectorModel) performSearch(query string) tea.Cmd {
	m.searching = true
	return func() tea.Msg {
		results, err := m.searcher.Search(context.Background(), query, 100)
		return searchResultMsg{results: results, err: err}
	}
}

// updateItemSelection updates the selected state of an item
func (m *datasetSelectorModel) updateItemSelection(name string, selected bool) {
	for i, item := range m.filteredItems {
		if di, ok := item.(datasetItem); ok && di.name == name {
			di.selected = selected
			m.filteredItems[i] = di
			break
		}
	}
	m.list.SetItems(m.filteredItems)
}

// GetSelectedDatasets returns the list of selected dataset names
func (m *datasetSelectorModel) GetSelectedDatasets() []string {
	var datasets []string
	for name, selected := range m.selected {
		if selected {
			datasets = append(datasets, name)
		}
	}
	return datasets
}

// WasConfirmed returns true if the user confirmed the selection
func (m *datasetSelectorModel) WasConfirmed() bool {
	return m.confirmed
}

// RunDatasetSelector runs the interactive dataset selector and returns
// selected dataset names
func RunDatasetSelector(config DatasetSelectorConfig) ([]string, error) {
	p := tea.NewProgram(NewDatasetSelector(config))
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	model := m.(*datasetSelectorModel)
	if !model.WasConfirmed() {
		return nil, apperr.ErrCancelled
	}

	return model.GetSelectedDatasets(), nil
}

// formatNumber formats a number with commas for thousands
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result []rune
	for i, r := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, r)
	}
	return string(result)
}
