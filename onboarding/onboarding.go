// Package onboarding implements the welcome screen that asks for a display
// name before entering the app.
package onboarding

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/GetStream/pairchat/validator"
)

// ParamUsername is the navigation parameter carrying the accepted name.
const ParamUsername = "username"

// Navigator replaces the current screen with another one. The replaced screen
// is dropped from the back stack.
type Navigator interface {
	Replace(screenID string, params map[string]any)
}

// Alerter shows a blocking, dismissible alert.
type Alerter interface {
	Alert(title, message string)
}

// Reason tells why a name was rejected.
type Reason int

const (
	TooShort Reason = iota + 1
	TooLong
	Empty
)

func (r Reason) String() string {
	switch r {
	case TooShort:
		return "too_short"
	case TooLong:
		return "too_long"
	case Empty:
		return "empty"
	}
	return "unknown"
}

// A ValidationError is returned when a name does not pass validation.
type ValidationError struct {
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid name: %s", e.Reason)
}

type nameForm struct {
	Username string `validate:"min=4,max=15,required"`
}

var tagReasons = map[string]Reason{
	"min":      TooShort,
	"max":      TooLong,
	"required": Empty,
}

var val = validator.New()

// Validate trims name and checks it is between 4 and 15 characters long. It
// returns the trimmed name or a *ValidationError.
func Validate(name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, e := range val.ValidateStruct(nameForm{Username: name}) {
		if r, ok := tagReasons[e.Tag]; ok {
			return "", &ValidationError{Reason: r}
		}
		return "", fmt.Errorf("validate name: %s", e.Message)
	}
	return name, nil
}

// Screen is the welcome screen of one locale.
type Screen struct {
	Locale    Locale
	Navigator Navigator
	Alerter   Alerter
	Logger    *slog.Logger
}

// NewScreen returns the welcome screen for locale.
func NewScreen(locale Locale, nav Navigator, alerter Alerter, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.Default()
	}
	return &Screen{
		Locale:    locale,
		Navigator: nav,
		Alerter:   alerter,
		Logger:    logger,
	}
}

// Submit validates name. On success it replaces the screen with the locale's
// main screen, passing the trimmed name. On failure it shows an alert and
// returns the *ValidationError; nothing is navigated.
func (s *Screen) Submit(name string) error {
	username, err := Validate(name)
	if err != nil {
		s.Logger.Info("Name rejected", "error", err.Error())
		s.Alerter.Alert(s.Locale.AlertTitle, s.Locale.message(err))
		return err
	}
	s.Navigator.Replace(s.Locale.MainScreen, map[string]any{ParamUsername: username})
	return nil
}

// SwitchLanguage replaces the screen with the welcome screen of the other
// language.
func (s *Screen) SwitchLanguage() {
	s.Navigator.Replace(s.Locale.AlternateScreen, nil)
}
