package las

import (
	"fmt"
	"strconv"
)

// ParsedCommand is what ParseArgs produces: the input paths plus reader
// options carrying the installed filter/transform chains, ready to hand
// to OpenReaderPipeline (spec §4.5).
type ParsedCommand struct {
	InputPaths []string
	Options    ReaderOptions
}

// ParseError is returned for duplicate, malformed, or unrecognized
// tokens (spec §4.5: "fatal error" on any of these).
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string { return fmt.Sprintf("parser: token %q: %s", e.Token, e.Reason) }

// ParseArgs walks argv once, left to right, recognizing three token
// groups in order: reader options, filter tokens (-keep_*/-drop_*/
// -first_only/-last_only/-thin_with_*), transform tokens (-translate_*
// /-scale_*/-rotate_*/-clamp_*/-set_*/-change_*/-classify_*/-repair_*/
// -adjusted_to_week/-week_to_adjusted/-switch_*/-copy_*/-bin_*/
// -flip_waveform_direction). Unknown tokens are fatal.
func ParseArgs(argv []string) (*ParsedCommand, error) {
	cmd := &ParsedCommand{Options: DefaultReaderOptions()}
	filters := &FilterChain{}
	transforms := &TransformChain{}
	q := NewQuantizer(0.001, 0.001, 0.001, 0, 0, 0)

	i := 0
	next := func() (string, bool) {
		if i >= len(argv) {
			return "", false
		}
		v := argv[i]
		i++
		return v, true
	}
	nextFloat := func(tok string) (float64, error) {
		s, ok := next()
		if !ok {
			return 0, &ParseError{Token: tok, Reason: "missing numeric argument"}
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &ParseError{Token: tok, Reason: "argument not numeric"}
		}
		return v, nil
	}
	nextInt := func(tok string) (int, error) {
		v, err := nextFloat(tok)
		return int(v), err
	}

	// accumulateDigits implements the "accumulate digits after
	// -keep_class/-drop_class/-keep_return/-drop_return until the next
	// non-numeric token" two-pass pattern (spec §4.5).
	accumulateDigits := func() []int {
		acc := &BitmaskAccumulator{}
		for i < len(argv) {
			if !acc.Accept(argv[i]) {
				break
			}
			i++
		}
		return acc.Values()
	}

	for {
		tok, ok := next()
		if !ok {
			break
		}
		switch tok {
		// --- reader options ---
		case "-rescale":
			sx, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			sy, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			sz, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			target := q
			target.ScaleX, target.ScaleY, target.ScaleZ = sx, sy, sz
			cmd.Options.Rescale = &target
		case "-reoffset":
			ox, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			oy, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			oz, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			if cmd.Options.Rescale == nil {
				r := q
				cmd.Options.Rescale = &r
			}
			cmd.Options.Rescale.OffsetX, cmd.Options.Rescale.OffsetY, cmd.Options.Rescale.OffsetZ = ox, oy, oz
		case "-merged":
			cmd.Options.MergePaths = append(cmd.Options.MergePaths, "")
		case "-buffered":
			cmd.Options.Buffered = true
		case "-stored":
			cmd.Options.Store = true
		case "-pipe_on":
			cmd.Options.PipeOn = true
		case "-i":
			path, ok := next()
			if !ok {
				return nil, &ParseError{Token: tok, Reason: "missing input path"}
			}
			cmd.InputPaths = append(cmd.InputPaths, path)

		// --- filter tokens ---
		case "-first_only":
			filters.Add(NewKeepFirstOnlyCriterion())
		case "-last_only":
			filters.Add(NewKeepLastOnlyCriterion())
		case "-keep_class":
			filters.Add(NewKeepClassCriterion(accumulateDigits()))
		case "-drop_class":
			filters.Add(NewDropClassCriterion(accumulateDigits()))
		case "-keep_return":
			filters.Add(NewKeepReturnCriterion(accumulateDigits()))
		case "-drop_return":
			filters.Add(NewDropReturnCriterion(accumulateDigits()))
		case "-keep_intensity":
			min, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			max, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			filters.Add(NewKeepIntensityCriterion(min, max))
		case "-drop_synthetic":
			filters.Add(NewDropSyntheticCriterion())
		case "-drop_keypoint":
			filters.Add(NewDropKeypointCriterion())
		case "-drop_withheld":
			filters.Add(NewDropWithheldCriterion())
		case "-thin_with_grid":
			step, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			filters.Add(NewThinWithGridCriterion(q, step))
		case "-thin_with_time":
			interval, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			filters.Add(NewThinWithTimeCriterion(interval))

		// --- transform tokens ---
		case "-translate_x", "-translate_y", "-translate_z":
			v, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			transforms.Add(axisTranslate(tok[len("-translate_"):], v))
		case "-scale_x", "-scale_y", "-scale_z":
			v, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			transforms.Add(axisScale(tok[len("-scale_"):], v))
		case "-rotate_xy":
			angle, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			cx, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			cy, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			transforms.Add(NewRotateXYOp(angle, cx, cy))
		case "-classify_as":
			v, err := nextInt(tok)
			if err != nil {
				return nil, err
			}
			transforms.Add(NewClassifyAsOp(uint8(v)))
		case "-repair_zero_returns":
			transforms.Add(NewRepairZeroReturnsOp())
		case "-adjusted_to_week":
			transforms.Add(NewAdjustedToWeekOp())
		case "-week_to_adjusted":
			week, err := nextInt(tok)
			if err != nil {
				return nil, err
			}
			transforms.Add(NewWeekToAdjustedOp(week))
		case "-switch_x_y":
			transforms.Add(NewSwitchXYOp())
		case "-switch_x_z":
			transforms.Add(NewSwitchXZOp())
		case "-switch_y_z":
			transforms.Add(NewSwitchYZOp())
		case "-copy_user_data_into_point_source":
			transforms.Add(NewCopyUserDataIntoPointSourceOp())
		case "-bin_Z_into_point_source":
			v, err := nextFloat(tok)
			if err != nil {
				return nil, err
			}
			transforms.Add(NewBinZIntoPointSourceOp(v))
		case "-flip_waveform_direction":
			transforms.Add(NewFlipWaveformDirectionOp())

		default:
			return nil, &ParseError{Token: tok, Reason: "unrecognized token"}
		}
	}

	cmd.Options.Filters = filters
	cmd.Options.Transforms = transforms
	return cmd, nil
}

func axisTranslate(axis string, v float64) Operation {
	switch axis {
	case "x":
		return NewTranslateXOp(v)
	case "y":
		return NewTranslateYOp(v)
	default:
		return NewTranslateZOp(v)
	}
}

func axisScale(axis string, v float64) Operation {
	switch axis {
	case "x":
		return NewScaleXOp(v)
	case "y":
		return NewScaleYOp(v)
	default:
		return NewScaleZOp(v)
	}
}
