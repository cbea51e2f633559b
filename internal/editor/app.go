package editor

import tea "github.com/charmbracelet/bubbletea"

// App adapts Model to tea.Model for tea.NewProgram.
type App struct {
	Model
}

func NewApp(m Model) App {
	return App{Model: m}
}

func (a App) Init() tea.Cmd {
	return a.Model.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := a.Model.Update(msg)
	a.Model = m
	return a, cmd
}

func (a App) View() string {
	return a.Model.View()
}
