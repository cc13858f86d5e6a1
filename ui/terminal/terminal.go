// Package terminal plays a session in a text terminal using tcell.
package terminal

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell"
	log "github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/froggergame/game/engine"
	"github.com/wricardo/mcp-training/froggergame/game/service"
)

// CellWidthPx approximates the width of one terminal column in logical pixels.
// It converts the terminal width into the viewport width used to decide
// whether the on-screen direction buttons are drawn.
const CellWidthPx = 8

const (
	gridTop  = 2
	gridLeft = 1
)

// keyNames maps terminal keys onto the key identifiers the game accepts
var keyNames = map[tcell.Key]string{
	tcell.KeyUp:    engine.KeyArrowUp,
	tcell.KeyDown:  engine.KeyArrowDown,
	tcell.KeyLeft:  engine.KeyArrowLeft,
	tcell.KeyRight: engine.KeyArrowRight,
}

var (
	styleDefault  = tcell.StyleDefault
	stylePlayer   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleGoal     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleEmpty    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleButton   = tcell.StyleDefault.Reverse(true)
	styleStatus   = tcell.StyleDefault.Bold(true)
)

// button is a clickable region on the screen
type button struct {
	label   string
	x, y    int
	dir     engine.Direction // empty for the restart button
	restart bool
}

func (b button) contains(x, y int) bool {
	return y == b.y && x >= b.x && x < b.x+len(b.label)
}

// UI plays a single session on a tcell screen
type UI struct {
	screen    tcell.Screen
	service   service.GameService
	sessionID string
	state     *engine.GameState
	buttons   []button
}

// New creates a terminal UI for an existing session. The screen must already be initialised.
func New(screen tcell.Screen, gameService service.GameService, sessionID string) *UI {
	return &UI{
		screen:    screen,
		service:   gameService,
		sessionID: sessionID,
	}
}

// Run draws the game and processes events until the player quits or ctx is done
func (ui *UI) Run(ctx context.Context) error {
	ui.screen.EnableMouse()
	if err := ui.refresh(ctx); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ui.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-done:
		}
	}()

	for {
		ev := ui.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ui.HandleEvent(ctx, ev) {
			return nil
		}
	}
}

// HandleEvent applies one screen event and redraws. It reports whether the UI should exit.
func (ui *UI) HandleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		return true

	case *tcell.EventResize:
		ui.screen.Sync()
		ui.draw()

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return true
			case 'r', 'R':
				ui.restart(ctx)
			}
		default:
			if name, ok := keyNames[ev.Key()]; ok {
				ui.pressKey(ctx, name)
			}
		}

	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return false
		}
		x, y := ev.Position()
		for _, b := range ui.buttons {
			if !b.contains(x, y) {
				continue
			}
			if b.restart {
				ui.restart(ctx)
			} else {
				ui.move(ctx, b.dir)
			}
			break
		}
	}
	return false
}

// State returns the last state drawn
func (ui *UI) State() *engine.GameState {
	return ui.state
}

func (ui *UI) pressKey(ctx context.Context, key string) {
	result, err := ui.service.PressKey(ctx, ui.sessionID, key)
	ui.apply(result, err)
}

func (ui *UI) move(ctx context.Context, dir engine.Direction) {
	result, err := ui.service.Move(ctx, ui.sessionID, string(dir), false)
	ui.apply(result, err)
}

func (ui *UI) apply(result *service.MoveResult, err error) {
	if err != nil {
		log.WithField("session", ui.sessionID).Warnf("Move failed: %v", err)
		return
	}
	if !result.Success {
		log.WithFields(log.Fields{
			"session": ui.sessionID,
			"reason":  result.IgnoredReason,
		}).Debug("Move ignored")
	}
	ui.state = result.GameState
	ui.draw()
}

func (ui *UI) restart(ctx context.Context) {
	state, err := ui.service.Reset(ctx, ui.sessionID)
	if err != nil {
		log.WithField("session", ui.sessionID).Warnf("Reset failed: %v", err)
		return
	}
	ui.state = state
	ui.draw()
}

func (ui *UI) refresh(ctx context.Context) error {
	state, err := ui.service.GetGameState(ctx, ui.sessionID)
	if err != nil {
		return err
	}
	ui.state = state
	ui.draw()
	return nil
}

func (ui *UI) drawString(x, y int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		ui.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}

func cellRune(kind engine.CellKind) (rune, tcell.Style) {
	switch kind {
	case engine.Player:
		return 'F', stylePlayer
	case engine.Goal:
		return 'G', styleGoal
	case engine.Obstacle:
		return 'X', styleObstacle
	default:
		return '·', styleEmpty
	}
}

func (ui *UI) draw() {
	ui.screen.Clear()
	ui.buttons = ui.buttons[:0]

	state := ui.state
	if state == nil {
		ui.screen.Show()
		return
	}

	ui.drawString(0, 0, fmt.Sprintf("Frogger  session %s  config %s", ui.sessionID, state.ConfigName), styleStatus)

	// Two columns per cell keeps the grid roughly square
	for y := 0; y < state.GridSize; y++ {
		for x := 0; x < state.GridSize; x++ {
			r, style := cellRune(state.CellAt(x, y).Kind)
			ui.screen.SetContent(gridLeft+x*2, gridTop+y, r, nil, style)
		}
	}

	row := gridTop + state.GridSize + 1
	ui.drawString(0, row, state.Message, styleDefault)
	row++

	if state.GameWon {
		ui.drawString(0, row, "GAME WON", styleGoal)
		row++
	}
	if state.GameOver {
		ui.drawString(0, row, "GAME OVER", styleObstacle)
		row++
	}
	if state.GameWon || state.GameOver {
		restart := button{label: "[ Restart ]", x: 0, y: row, restart: true}
		ui.addButton(restart)
		ui.drawString(restart.x+len(restart.label)+1, row, "or press r", styleDefault)
		row++
	}

	width, _ := ui.screen.Size()
	if engine.ShowDirectionControls(width * CellWidthPx) {
		row++
		ui.addButton(button{label: "[ Up ]", x: 8, y: row, dir: engine.Up})
		row++
		ui.addButton(button{label: "[ Left ]", x: 0, y: row, dir: engine.Left})
		ui.addButton(button{label: "[ Right ]", x: 10, y: row, dir: engine.Right})
		row++
		ui.addButton(button{label: "[ Down ]", x: 7, y: row, dir: engine.Down})
		row++
	}

	ui.drawString(0, row+1, "arrows move  r restart  q quit", styleEmpty)
	ui.screen.Show()
}

func (ui *UI) addButton(b button) {
	ui.buttons = append(ui.buttons, b)
	ui.drawString(b.x, b.y, b.label, styleButton)
}
