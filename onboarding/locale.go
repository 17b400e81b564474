package onboarding

import (
	"errors"
	"fmt"
	"strings"
)

// A Locale holds the screen ids, prompt and alert texts of one language
// variant of the welcome screen.
type Locale struct {
	Name            string
	MainScreen      string
	AlternateScreen string
	AlternateLabel  string
	Banner          string
	// Prompt is a format string taking AlternateLabel.
	Prompt     string
	AlertTitle string
	Messages   map[Reason]string
}

// English is the default welcome screen.
var English = Locale{
	Name:            "en",
	MainScreen:      "MainEN",
	AlternateScreen: "WelcomeJA",
	AlternateLabel:  "日本語",
	Banner:          "💖 FOR LOVER 💖",
	Prompt:          "Enter your name (/lang for %s): ",
	AlertTitle:      "Error",
	Messages: map[Reason]string{
		TooShort: "Please enter your name with at least 4 characters.",
		TooLong:  "Please enter your name within 15 characters.",
		Empty:    "Please enter your name.",
	},
}

// Japanese is the welcome screen reached through the language switch.
var Japanese = Locale{
	Name:            "ja",
	MainScreen:      "MainJA",
	AlternateScreen: "WelcomeEN",
	AlternateLabel:  "English",
	Banner:          "💖 FOR LOVER 💖",
	Prompt:          "名前を入力してください（/lang で %s）: ",
	AlertTitle:      "エラー",
	Messages: map[Reason]string{
		TooShort: "名前は4文字以上で入力してください。",
		TooLong:  "名前は15文字以内で入力してください。",
		Empty:    "名前を入力してください。",
	},
}

// LookupLocale returns the locale named name ("en" or "ja").
func LookupLocale(name string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "en":
		return English, nil
	case "ja":
		return Japanese, nil
	}
	return Locale{}, fmt.Errorf("unknown locale %q", name)
}

// PromptText returns the name prompt with the label of the other language.
func (l Locale) PromptText() string {
	return fmt.Sprintf(l.Prompt, l.AlternateLabel)
}

func (l Locale) message(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		if msg, ok := l.Messages[verr.Reason]; ok {
			return msg
		}
	}
	return l.Messages[Empty]
}
