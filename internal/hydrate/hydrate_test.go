package hydrate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_overlay.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder[windowSettings](buildOptions(tc)...)
			ctx := Context{Name: "window", Group: "app"}

			result, err := decoder.Decode(ctx, []byte(tc.Input))

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded value mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestDecoderDefaultRunsPostHooks(t *testing.T) {
	decoder := NewDecoder(
		WithFactory[windowSettings](defaultWindow),
		WithPostHook[windowSettings](func(_ Context, w *windowSettings) error {
			w.Tags = append(w.Tags, "checked")
			return nil
		}),
	)

	value, err := decoder.Default(Context{Name: "window"})
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if value.Width != 800 || len(value.Tags) != 1 || value.Tags[0] != "checked" {
		t.Fatalf("unexpected default value: %#v", value)
	}
}

func TestDecoderFactoryBuildsFreshValues(t *testing.T) {
	decoder := NewDecoder(WithFactory[windowSettings](defaultWindow))

	first, err := decoder.Decode(Context{Name: "window"}, []byte(`{"tags":["x"]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	first.Tags[0] = "mutated"

	second, err := decoder.Decode(Context{Name: "window"}, []byte(`{}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.Tags != nil {
		t.Fatalf("expected fresh default without tags, got %#v", second.Tags)
	}
}

func TestDecoderRejectsEmptyPayload(t *testing.T) {
	decoder := NewDecoder[windowSettings]()
	if _, err := decoder.Decode(Context{Name: "window"}, []byte("  ")); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestDecoderPreHookSkipsNonObjects(t *testing.T) {
	called := false
	decoder := NewDecoder(WithPreHook[[]int](func(_ Context, payload map[string]any) (map[string]any, error) {
		called = true
		return payload, nil
	}))

	value, err := decoder.Decode(Context{Name: "list"}, []byte(`[1,2,3]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if called {
		t.Fatalf("pre-hook should not run for array payloads")
	}
	if !reflect.DeepEqual(value, []int{1, 2, 3}) {
		t.Fatalf("unexpected value %#v", value)
	}
}

func TestDecoderPostHookErrorIsWrapped(t *testing.T) {
	base := errors.New("invalid")
	decoder := NewDecoder(WithPostHook[windowSettings](func(Context, *windowSettings) error {
		return base
	}))

	_, err := decoder.Decode(Context{Name: "window"}, []byte(`{}`))
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped post-hook error, got %v", err)
	}
}

func buildOptions(tc fixtureCase) []DecoderOption[windowSettings] {
	options := []DecoderOption[windowSettings]{
		WithFactory[windowSettings](defaultWindow),
	}

	for _, optName := range tc.Options {
		switch optName {
		case "use_number":
			options = append(options, WithUseNumber[windowSettings]())
		case "disallow_unknown":
			options = append(options, WithDisallowUnknownFields[windowSettings]())
		}
	}

	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "caption_to_title":
			options = append(options, WithPreHook[windowSettings](captionPreHook))
		}
	}

	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "clamp_width":
			options = append(options, WithPostHook[windowSettings](clampWidthPostHook))
		}
	}

	return options
}

func captionPreHook(_ Context, payload map[string]any) (map[string]any, error) {
	caption, ok := payload["caption"]
	if !ok {
		return payload, nil
	}
	delete(payload, "caption")
	if _, exists := payload["title"]; !exists {
		payload["title"] = caption
	}
	return payload, nil
}

func clampWidthPostHook(_ Context, w *windowSettings) error {
	if w.Width < 1 {
		w.Width = 1
	}
	return nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name      string         `json:"name"`
	Input     string         `json:"input"`
	Expect    windowSettings `json:"expect"`
	ExpectErr string         `json:"expectErr"`
	PreHooks  []string       `json:"preHooks"`
	PostHooks []string       `json:"postHooks"`
	Options   []string       `json:"options"`
}

type windowSettings struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Title  string   `json:"title"`
	Tags   []string `json:"tags"`
}

func defaultWindow() windowSettings {
	return windowSettings{Width: 800, Height: 600, Title: "main"}
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
