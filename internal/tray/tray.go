package tray

import (
	"context"
	"time"

	"fyne.io/systray"
	"github.com/charmbracelet/log"
)

// DefaultSyncInterval is how often the check marks follow the speed cell.
const DefaultSyncInterval = 100 * time.Millisecond

// Actions receives menu selections.
type Actions interface {
	SelectPreset(i int) error
	Exit()
}

// Indexer reports the preset index of the current speed.
type Indexer interface {
	CurrentIndex() int
}

// Tray drives the platform tray on fyne.io/systray.
type Tray struct {
	menu    *Menu
	actions Actions
	speed   Indexer
	logger  *log.Logger
	every   time.Duration
}

// New returns a tray for menu. Nothing is shown until Run.
func New(menu *Menu, actions Actions, speed Indexer, logger *log.Logger) *Tray {
	if logger == nil {
		logger = log.Default()
	}
	return &Tray{menu: menu, actions: actions, speed: speed, logger: logger, every: DefaultSyncInterval}
}

// Run shows the tray and blocks until Exit is chosen or ctx is done. On
// macOS it must be called from the main goroutine.
func (t *Tray) Run(ctx context.Context) {
	systray.Run(func() { t.ready(ctx) }, func() {
		t.logger.Debug("Tray closed")
	})
}

func (t *Tray) ready(ctx context.Context) {
	if icon, err := iconBytes(); err != nil {
		t.logger.Warn("Failed to draw tray icon", "error", err)
	} else {
		systray.SetIcon(icon)
	}
	systray.SetTooltip(Tooltip)

	version := systray.AddMenuItem(t.menu.VersionLine(), "")
	version.Disable()
	systray.AddSeparator()

	speedMenu := systray.AddMenuItem(t.menu.SpeedTitle(), "Speech speed")
	presets := make([]*systray.MenuItem, 0, len(t.menu.Labels()))
	selected := make(chan int)
	for i, label := range t.menu.Labels() {
		item := speedMenu.AddSubMenuItemCheckbox(label, "", i == t.menu.Checked())
		presets = append(presets, item)
		go func(i int, clicked <-chan struct{}) {
			for {
				select {
				case <-ctx.Done():
					return
				case <-clicked:
					select {
					case selected <- i:
					case <-ctx.Done():
						return
					}
				}
			}
		}(i, item.ClickedCh)
	}

	systray.AddSeparator()
	exit := systray.AddMenuItem("Exit", "Quit narrator")

	go func() {
		ticker := time.NewTicker(t.every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				systray.Quit()
				return
			case <-exit.ClickedCh:
				t.actions.Exit()
				systray.Quit()
				return
			case i := <-selected:
				if err := t.actions.SelectPreset(i); err != nil {
					t.logger.Warn("Preset selection failed", "index", i, "error", err)
				}
				t.sync(speedMenu, presets)
			case <-ticker.C:
				t.sync(speedMenu, presets)
			}
		}
	}()
}

func (t *Tray) sync(speedMenu *systray.MenuItem, presets []*systray.MenuItem) {
	prev, changed := t.menu.Sync(t.speed.CurrentIndex())
	if !changed {
		return
	}
	if prev >= 0 {
		presets[prev].Uncheck()
	}
	if cur := t.menu.Checked(); cur >= 0 {
		presets[cur].Check()
	}
	speedMenu.SetTitle(t.menu.SpeedTitle())
}
