package command

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/stage-engine/pkg/presentation"
	"github.com/jwebster45206/stage-engine/pkg/scenario"
)

const (
	ChangeTextureParameterName = "ChangeTextureParameter"

	textureAction = "change texture parameter"

	// NoneValue is the authored value that clears a parameter.
	NoneValue = "None"
)

// Argument names read from the raw record.
const (
	ArgTarget        = "Target"
	ArgTargetName    = "TargetName"
	ArgParameterName = "ParameterName"
	ArgTexture       = "Texture"
)

// TargetKind is the closed set of targets a texture parameter can be set on.
type TargetKind int

const (
	TargetUnknown TargetKind = iota
	TargetImage
	TargetRetainerBox
)

// ParseTargetKind maps an authored target name to a kind. Anything
// unrecognised is TargetUnknown.
func ParseTargetKind(s string) TargetKind {
	switch s {
	case "Image":
		return TargetImage
	case "RetainerBox":
		return TargetRetainerBox
	default:
		return TargetUnknown
	}
}

func (k TargetKind) String() string {
	switch k {
	case TargetImage:
		return "Image"
	case TargetRetainerBox:
		return "RetainerBox"
	default:
		return "Unknown"
	}
}

// TextureParameterArgs are the parsed arguments of ChangeTextureParameter.
// Target is kept as authored so error messages and property keys reproduce it.
type TextureParameterArgs struct {
	Target        string
	TargetName    string
	ParameterName string
	TexturePath   string
}

func (a TextureParameterArgs) Kind() TargetKind {
	return ParseTargetKind(a.Target)
}

// Clears reports whether the arguments ask for the parameter to be cleared.
func (a TextureParameterArgs) Clears() bool {
	return a.TexturePath == "" || a.TexturePath == NoneValue
}

func (a TextureParameterArgs) PropertyKey() string {
	return scenario.MakePropertyKey(a.Target, a.TargetName, a.ParameterName)
}

func (a TextureParameterArgs) PropertyValue() string {
	return a.TexturePath
}

// textureArgsFromProperty rebuilds arguments from a stored scenario property.
func textureArgsFromProperty(p scenario.Property) TextureParameterArgs {
	kind, name, param := scenario.ParsePropertyKey(p.Key)
	return TextureParameterArgs{
		Target:        kind,
		TargetName:    name,
		ParameterName: param,
		TexturePath:   p.Value,
	}
}

// ChangeTextureParameter sets a texture parameter on the dynamic material of an
// image or on the effect material of a retainer box.
type ChangeTextureParameter struct {
	clear *presentation.Texture
}

var _ Command = (*ChangeTextureParameter)(nil)

// NewChangeTextureParameter creates the command. clear is bound for empty or
// "None" values; nil selects presentation.ClearTexture.
func NewChangeTextureParameter(clear *presentation.Texture) *ChangeTextureParameter {
	if clear == nil {
		clear = presentation.ClearTexture
	}
	return &ChangeTextureParameter{clear: clear}
}

func (c *ChangeTextureParameter) Name() string {
	return ChangeTextureParameterName
}

func (c *ChangeTextureParameter) Parse(rec Record) Args {
	return c.ParseArgs(rec)
}

// ParseArgs is Parse with the concrete argument type.
func (c *ChangeTextureParameter) ParseArgs(rec Record) TextureParameterArgs {
	return TextureParameterArgs{
		Target:        rec.GetArg(ArgTarget),
		TargetName:    rec.GetArg(ArgTargetName),
		ParameterName: rec.GetArg(ArgParameterName),
		TexturePath:   rec.GetArg(ArgTexture),
	}
}

func (c *ChangeTextureParameter) Execute(rec Record, env Env) (ProcessStatus, error) {
	args := c.ParseArgs(rec)
	log := c.logger(env, args)

	if err := c.apply(args, env, log); err != nil {
		return ProcessError, err
	}

	if env.Properties != nil {
		env.Properties.Register(c.Name(), args.PropertyKey(), args.PropertyValue())
		log.Debug("Command stage", "stage", StagePublished, "key", args.PropertyKey())
	}
	return ProcessNext, nil
}

func (c *ChangeTextureParameter) Preview(rec Record, env Env, isCurrent bool) (PreviewStatus, error) {
	args := c.ParseArgs(rec)
	log := c.logger(env, args).With("current", isCurrent)

	if err := c.apply(args, env, log); err != nil {
		return PreviewError, err
	}
	log.Debug("Command stage", "stage", StageSkipped)
	return PreviewComplete, nil
}

func (c *ChangeTextureParameter) RestoreFromSaveData(props []scenario.Property, env Env) (RestoreStatus, error) {
	for _, p := range props {
		args := textureArgsFromProperty(p)
		if err := c.apply(args, env, c.logger(env, args).With("restore", true)); err != nil {
			return RestoreError, err
		}
	}
	return RestoreComplete, nil
}

func (c *ChangeTextureParameter) logger(env Env, args TextureParameterArgs) *slog.Logger {
	return env.logger().With(
		"command", c.Name(),
		"target", args.Target,
		"target_name", args.TargetName,
		"parameter", args.ParameterName,
	)
}

// apply resolves the texture and the target material, then binds the texture.
func (c *ChangeTextureParameter) apply(args TextureParameterArgs, env Env, log *slog.Logger) error {
	log.Debug("Command stage", "stage", StageParsed)

	tex, err := c.resolveTexture(args, env)
	if err != nil {
		log.Warn("Command failed", "stage", StageParsed, "error", err)
		return err
	}
	log.Debug("Command stage", "stage", StageValueResolved, "texture", tex.Path)

	material, err := c.resolveMaterial(args, env)
	if err != nil {
		log.Warn("Command failed", "stage", StageValueResolved, "error", err)
		return err
	}
	log.Debug("Command stage", "stage", StageTargetResolved, "material", material.MaterialName())

	material.SetTextureParameter(args.ParameterName, tex)
	log.Debug("Command stage", "stage", StageMutated)
	return nil
}

func (c *ChangeTextureParameter) resolveTexture(args TextureParameterArgs, env Env) (*presentation.Texture, error) {
	if args.Clears() {
		return c.clear, nil
	}

	var (
		asset presentation.Asset
		ok    bool
	)
	if env.Assets != nil {
		asset, ok = env.Assets.TryGetOrLoad(args.TexturePath)
	}
	if !ok {
		return nil, textureFailure(StageParsed, ErrAssetLoad, "Failed to load texture asset %s", args.TexturePath)
	}

	tex, ok := asset.(*presentation.Texture)
	if !ok || tex == nil {
		return nil, textureFailure(StageParsed, ErrAssetType, "Asset %s is not a texture", args.TexturePath)
	}
	return tex, nil
}

func (c *ChangeTextureParameter) resolveMaterial(args TextureParameterArgs, env Env) (*presentation.DynamicMaterial, error) {
	var material *presentation.DynamicMaterial

	switch args.Kind() {
	case TargetImage:
		var (
			img   *presentation.Image
			found bool
		)
		if env.Targets != nil {
			img, found = env.Targets.TryFindImage(args.TargetName)
		}
		if !found {
			return nil, textureFailure(StageValueResolved, ErrTargetNotFound, "Target %s is not found", args.TargetName)
		}
		material = img.DynamicMaterial()

	case TargetRetainerBox:
		var (
			box   *presentation.RetainerBox
			found bool
		)
		if env.Targets != nil {
			box, found = env.Targets.TryFindRetainerBox(args.TargetName)
		}
		if !found {
			return nil, textureFailure(StageValueResolved, ErrTargetNotFound, "Target %s is not found", args.TargetName)
		}
		material, _ = box.EffectMaterial().(*presentation.DynamicMaterial)

	default:
		return nil, textureFailure(StageValueResolved, ErrUnsupportedTarget, "Target %s is not supported", args.Target)
	}

	if material == nil {
		return nil, textureFailure(StageValueResolved, ErrNotDynamicMaterial, "Target %s is not a dynamic material", args.TargetName)
	}
	return material, nil
}

func textureFailure(stage Stage, kind error, format string, a ...any) *FailureError {
	return &FailureError{
		Action: textureAction,
		Reason: fmt.Sprintf(format, a...),
		Stage:  stage,
		Kind:   kind,
	}
}
