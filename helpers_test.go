package statereg

import (
	"errors"
	"testing"
)

type preferences struct {
	LanguageCsv     string `json:"languageCsv"`
	DefaultFontSize int    `json:"defaultFontSize"`
	FramerateLimit  int    `json:"framerateLimit"`
	VSync           int    `json:"vsync"`
	ShowMetaOnNew   bool   `json:"showMetaOnNew"`
}

func (p *preferences) SetDefaults() {
	p.DefaultFontSize = 18
	p.FramerateLimit = 150
	p.ShowMetaOnNew = true
}

type scriptingMode struct {
	ActionInsertDelayMs int `json:"actionInsertDelayMs"`
}

type recentFile struct {
	Name        string `json:"name"`
	ProjectPath string `json:"projectPath"`
}

type session struct {
	LastPath    string       `json:"lastPath"`
	RecentFiles []recentFile `json:"recentFiles"`
	Zoom        float64      `json:"zoom"`
	Samples     Bytes        `json:"samples"`
}

func (s *session) SetDefaults() {
	s.Zoom = 1
}

func expectContractPanic(t *testing.T, target error, fn func()) *ContractError {
	t.Helper()
	var caught *ContractError
	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatalf("expected panic wrapping %v", target)
			}
			err, ok := r.(*ContractError)
			if !ok {
				t.Fatalf("expected *ContractError panic, got %T: %v", r, r)
			}
			if !errors.Is(err, target) {
				t.Fatalf("expected %v, got %v", target, err)
			}
			caught = err
		}()
		fn()
	}()
	return caught
}
