package app

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	tabStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tabActiveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236")).Bold(true)
	helpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dividerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	listTitleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	listTimeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	recordingMarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	readyMarkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	connectedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	disconnectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	coachBadgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("61")).Bold(true)
	formLabelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Bold(true)
	formErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	confirmStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208")).Padding(0, 1)
	toastInfoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true)
	toastSuccessStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("65")).Bold(true)
	toastErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
)
