package scenario

import (
	"strings"
	"testing"
)

func TestParseScript_JSON(t *testing.T) {
	data := []byte(`{
		"name": "Intro",
		"stage": {
			"images": [{"name": "Portrait", "material": "dynamic"}],
			"retainer_boxes": [{"name": "Blur", "effect": "dynamic"}]
		},
		"commands": [
			{"command": "ChangeTextureParameter", "args": {"Target": "Image", "TargetName": "Portrait", "ParameterName": "BaseColor", "Texture": "/Game/T_Face"}}
		]
	}`)

	s, err := ParseScript("scripts/intro.json", data)
	if err != nil {
		t.Fatalf("ParseScript() error = %v", err)
	}
	if s.Name != "Intro" {
		t.Errorf("Name = %q", s.Name)
	}
	if s.FileName != "intro.json" {
		t.Errorf("FileName = %q, want intro.json", s.FileName)
	}
	if len(s.Stage.Images) != 1 || s.Stage.Images[0].Material != "dynamic" {
		t.Errorf("unexpected images: %+v", s.Stage.Images)
	}
	if len(s.Commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(s.Commands))
	}
	if got := s.Commands[0].GetArg("TargetName"); got != "Portrait" {
		t.Errorf("GetArg(TargetName) = %q", got)
	}
	if got := s.Commands[0].GetArg("Missing"); got != "" {
		t.Errorf("GetArg(Missing) = %q, want empty", got)
	}
}

func TestParseScript_YAML(t *testing.T) {
	data := []byte(`name: Intro
stage:
  retainer_boxes:
    - name: Blur
      effect: dynamic
commands:
  - command: ChangeTextureParameter
    args:
      Target: RetainerBox
      TargetName: Blur
      ParameterName: Mask
      Texture: None
`)

	s, err := ParseScript("intro.yaml", data)
	if err != nil {
		t.Fatalf("ParseScript() error = %v", err)
	}
	if len(s.Stage.RetainerBoxes) != 1 || s.Stage.RetainerBoxes[0].Name != "Blur" {
		t.Errorf("unexpected retainer boxes: %+v", s.Stage.RetainerBoxes)
	}
	if got := s.Commands[0].GetArg("Texture"); got != "None" {
		t.Errorf("GetArg(Texture) = %q", got)
	}
}

func TestParseScript_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		errPart  string
	}{
		{"unknown extension", "intro.txt", `{}`, "unsupported script format"},
		{"unknown json field", "intro.json", `{"name":"x","bogus":1}`, "failed to decode"},
		{"unknown yaml field", "intro.yml", "name: x\nbogus: 1\n", "failed to decode"},
		{"unnamed command", "intro.json", `{"name":"x","commands":[{"args":{}}]}`, "has no name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript(tt.filename, []byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not contain %q", err, tt.errPart)
			}
		})
	}
}

func TestCommand_GetArgNilArgs(t *testing.T) {
	var c Command
	if c.GetArg("Target") != "" {
		t.Error("expected empty arg on zero command")
	}
}
