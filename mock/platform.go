package mock

import (
	"fmt"
	"sync"

	"github.com/mstian06/roboguice"
)

// Screen is the abstract "current screen" type an Activity supplies while current.
type Screen interface {
	ScreenName() string
}

// Activity is a screen handle.
type Activity struct {
	Name string
}

func (a *Activity) ScreenName() string {
	return a.Name
}

func (a *Activity) ContextTypes() []roboguice.TypeID {
	return []roboguice.TypeID{roboguice.TypeIDOf[Screen]()}
}

func (a *Activity) String() string {
	return fmt.Sprintf("activity(%s)", a.Name)
}

// BackgroundService is a background unit handle.
type BackgroundService struct {
	Name string
}

func (s *BackgroundService) String() string {
	return fmt.Sprintf("service(%s)", s.Name)
}

// Application is the process-wide handle.
type Application struct {
	Package string
}

// Platform services handed out by Platform.
type LocationManager struct {
	Handle roboguice.ContextHandle
}

type LayoutInflater struct {
	Handle roboguice.ContextHandle
}

type Vibrator struct {
	Handle roboguice.ContextHandle
}

// SearchManager has a lookup key but Platform never supplies it.
type SearchManager struct{}

// Handler is a plain injectable type.
type Handler struct {
	ID int
}

// Listener is a context-bound resource registered with the host. It counts
// its shutdowns and appends its name to Released when one is given.
type Listener struct {
	Name     string
	Fail     error
	Panic    bool
	Released *[]string

	mu        sync.Mutex
	shutdowns int
}

func (l *Listener) OnShutdown(*roboguice.ContainerContext) error {
	l.mu.Lock()
	l.shutdowns++
	l.mu.Unlock()
	if l.Released != nil {
		*l.Released = append(*l.Released, l.Name)
	}
	if l.Panic {
		panic("listener " + l.Name + " already unregistered")
	}
	return l.Fail
}

func (l *Listener) Shutdowns() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shutdowns
}

// Logger is a plain interface bound to a constant in tests.
type Logger interface {
	Log(msg string)
}

type NopLogger struct{}

func (NopLogger) Log(string) {}

// Lookup returns the lookup registry for the platform services above.
func Lookup() *roboguice.LookupRegistry {
	return roboguice.NewLookupRegistry(map[roboguice.TypeID]roboguice.LookupKey{
		roboguice.TypeIDOf[*LocationManager](): roboguice.LocationService,
		roboguice.TypeIDOf[*LayoutInflater]():  roboguice.LayoutInflaterService,
		roboguice.TypeIDOf[*Vibrator]():        roboguice.VibratorService,
		roboguice.TypeIDOf[*SearchManager]():   roboguice.SearchService,
	})
}

// Platform is a fake host that counts every service fetch.
type Platform struct {
	mu    sync.Mutex
	calls map[roboguice.LookupKey]int
	// Fail, when set, is returned by every fetch.
	Fail error
}

func NewPlatform() *Platform {
	return &Platform{calls: make(map[roboguice.LookupKey]int)}
}

// Accessor returns the context accessor capability backed by p.
func (p *Platform) Accessor() roboguice.ContextAccessor {
	return func(handle roboguice.ContextHandle, key roboguice.LookupKey) (any, error) {
		p.mu.Lock()
		p.calls[key]++
		fail := p.Fail
		p.mu.Unlock()

		if fail != nil {
			return nil, fail
		}
		switch key {
		case roboguice.LocationService:
			return &LocationManager{Handle: handle}, nil
		case roboguice.LayoutInflaterService:
			return &LayoutInflater{Handle: handle}, nil
		case roboguice.VibratorService:
			return &Vibrator{Handle: handle}, nil
		}
		return nil, nil
	}
}

// Calls returns how many times key was fetched.
func (p *Platform) Calls(key roboguice.LookupKey) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[key]
}

// Capabilities wires p and app into assembler capabilities.
func (p *Platform) Capabilities(app *Application) roboguice.Capabilities {
	caps := roboguice.Capabilities{Accessor: p.Accessor()}
	if app != nil {
		caps.Application = app
	}
	return caps
}
