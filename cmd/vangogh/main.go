package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	lic "github.com/licfx/vangogh/core"
	"github.com/licfx/vangogh/utils"

	"github.com/fogleman/gg"
	"golang.org/x/term"
)

const banner = `
┬  ┬┌─┐┌┐┌  ┌─┐┌─┐┌─┐┬ ┬
└┐┌┘├─┤│││  │ ┬│ ││ ┬├─┤
 └┘ ┴ ┴┘└┘  └─┘└─┘└─┘┴ ┴

Go (Golang) Van Gogh (LIC) painterly image filter.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

const (
	// channel selector values
	channelHue        = "hue"
	channelSaturation = "saturation"
	channelBrightness = "brightness"

	// operator selector values
	operatorDerivative = "derivative"
	operatorGradient   = "gradient"

	// convolve source selector values
	convolveNoise = "noise"
	convolveImage = "image"

	// message colors
	successColor = "\x1b[92m"
	errorColor   = "\x1b[31m"
	defaultColor = "\x1b[0m"
)

// Version indicates the current build version.
var Version string

// settings is the persistable parameter record, the "repeat last values"
// store written next to the images it was used on.
type settings struct {
	FilterLen   float64 `json:"filtlen"`
	NoiseMag    float64 `json:"noisemag"`
	IntSteps    float64 `json:"intsteps"`
	MinValue    float64 `json:"minv"`
	MaxValue    float64 `json:"maxv"`
	Channel     string  `json:"channel"`
	Operator    string  `json:"operator"`
	Source      string  `json:"convolve"`
	EffectImage string  `json:"effect_image,omitempty"`
}

func main() {
	var (
		// Flags
		source      = flag.String("in", pipeName, "Source image")
		destination = flag.String("out", pipeName, "Destination image")
		effect      = flag.String("effect", "", "Effect image driving the flow field (defaults to the source image)")
		filterLen   = flag.Float64("len", 5, "Filter length [0.1, 64]")
		noiseMag    = flag.Float64("noise", 2, "Noise magnitude [1, 5]")
		intSteps    = flag.Float64("steps", 25, "Integration steps [1, 40]")
		minValue    = flag.Float64("min", -25, "Minimum value [-100, 0]")
		maxValue    = flag.Float64("max", 25, "Maximum value [0, 100]")
		channel     = flag.String("channel", channelBrightness, "Effect channel: hue|saturation|brightness")
		operator    = flag.String("operator", operatorGradient, "Effect operator: derivative|gradient")
		conv        = flag.String("conv", convolveImage, "Convolve source: noise|image")
		seed        = flag.Int64("seed", 0, "Random seed, 0 picks one from the clock")
		settingsF   = flag.String("settings", "", "Settings file for repeating the last run's values")
	)

	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, fmt.Sprintf(banner, Version))
		flag.PrintDefaults()
	}
	flag.Parse()

	if len(*source) == 0 {
		log.Fatal("Usage: vangogh -in input.jpg -out out.png")
	}

	// An existing settings file restores the last run's values; flags set
	// explicitly on the command line take precedence over the stored ones.
	if *settingsF != "" {
		if stored, err := loadSettings(*settingsF); err == nil {
			applyUnlessSet(stored, filterLen, noiseMag, intSteps, minValue,
				maxValue, channel, operator, conv, effect)
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Unable to read the settings file: %v", err)
		}
	}

	params := lic.DefaultParams()
	params.FilterLen = *filterLen
	params.NoiseMag = *noiseMag
	params.IntSteps = *intSteps
	params.MinValue = *minValue
	params.MaxValue = *maxValue

	var err error
	if params.Channel, err = parseChannel(*channel); err != nil {
		log.Fatalf("%v", err)
	}
	if params.Operator, err = parseOperator(*operator); err != nil {
		log.Fatalf("%v", err)
	}
	if params.Source, err = parseSource(*conv); err != nil {
		log.Fatalf("%v", err)
	}
	if err = params.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	start := time.Now()

	var dst io.Writer
	if *destination == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			log.Fatalln("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		fileTypes := []string{".jpg", ".jpeg", ".png"}
		ext := filepath.Ext(*destination)

		if !inSlice(ext, fileTypes) {
			log.Fatalf("Output file type not supported: %v", ext)
		}

		fn, err := os.OpenFile(*destination, os.O_CREATE|os.O_WRONLY, 0755)
		if err != nil {
			log.Fatalf("Unable to open output file: %v", err)
		}
		defer fn.Close()
		dst = fn
	}

	src, err := loadImage(*source)
	if err != nil {
		log.Fatalf("Unable to read the source image: %s%v%s", errorColor, err, defaultColor)
	}

	var effectImg image.Image
	if *effect != "" {
		effectImg, err = lic.GetImage(*effect)
		if err != nil {
			log.Fatalf("Unable to read the effect image: %s%v%s", errorColor, err, defaultColor)
		}
	}

	// Progress indicator
	ind := utils.NewProgressIndicator("Painting...", time.Millisecond*100)
	ind.Start()

	drawable := lic.NewImageDrawable(src)

	proc := lic.NewProcessor(params)
	proc.Progress = ind.Set
	if *seed != 0 {
		proc.Rand = rand.New(rand.NewSource(*seed))
	}

	if err := proc.Run(drawable, effectImg); err != nil {
		ind.StopMsg = fmt.Sprintf("Painting... %sfailed ✗%s\n", errorColor, defaultColor)
		ind.Stop()
		log.Fatalf("Filter error: %s%v%s", errorColor, err, defaultColor)
	}

	ind.StopMsg = fmt.Sprintf("Painting... %sfinished ✔%s", successColor, defaultColor)
	ind.Stop()

	if err := encodeImage(dst, drawable.Image()); err != nil {
		log.Fatalf("Error encoding the output image: %v", err)
	}

	if *settingsF != "" {
		stored := settings{
			FilterLen:   params.FilterLen,
			NoiseMag:    params.NoiseMag,
			IntSteps:    params.IntSteps,
			MinValue:    params.MinValue,
			MaxValue:    params.MaxValue,
			Channel:     *channel,
			Operator:    *operator,
			Source:      *conv,
			EffectImage: *effect,
		}
		if err := saveSettings(*settingsF, stored); err != nil {
			log.Fatalf("Unable to write the settings file: %v", err)
		}
	}

	log.Printf(fmt.Sprintf("\nExecution time: %s%.2fs%s\n", successColor, time.Since(start).Seconds(), defaultColor))
}

// loadImage reads the source image from a file or, for `-`, from a pipe on
// stdin.
func loadImage(source string) (*image.NRGBA, error) {
	if source == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			log.Fatalln("`-` should be used with a pipe for stdin")
		}
		return lic.DecodeImage(os.Stdin)
	}
	return lic.GetImage(source)
}

// encodeImage draws the result into a drawing context and encodes it in the
// format selected by the destination file extension.
func encodeImage(dst io.Writer, img *image.NRGBA) error {
	var err error

	bounds := img.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(img, 0, 0)
	out := dc.Image()

	switch dst.(type) {
	case *os.File:
		ext := filepath.Ext(dst.(*os.File).Name())
		switch ext {
		case "", ".jpg", ".jpeg":
			err = jpeg.Encode(dst, out, &jpeg.Options{Quality: 100})
		case ".png":
			err = png.Encode(dst, out)
		default:
			err = errors.New("unsupported image format")
		}
	default:
		err = jpeg.Encode(dst, out, &jpeg.Options{Quality: 100})
	}
	return err
}

// loadSettings reads a stored parameter record.
func loadSettings(path string) (settings, error) {
	var s settings

	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, err
	}
	return s, nil
}

// saveSettings writes the parameter record for the next invocation.
func saveSettings(path string, s settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyUnlessSet copies stored settings into the flag values, skipping any
// flag the user set explicitly on the command line.
func applyUnlessSet(s settings, filterLen, noiseMag, intSteps, minValue, maxValue *float64,
	channel, operator, conv, effect *string) {

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	if !set["len"] {
		*filterLen = s.FilterLen
	}
	if !set["noise"] {
		*noiseMag = s.NoiseMag
	}
	if !set["steps"] {
		*intSteps = s.IntSteps
	}
	if !set["min"] {
		*minValue = s.MinValue
	}
	if !set["max"] {
		*maxValue = s.MaxValue
	}
	if !set["channel"] && s.Channel != "" {
		*channel = s.Channel
	}
	if !set["operator"] && s.Operator != "" {
		*operator = s.Operator
	}
	if !set["conv"] && s.Source != "" {
		*conv = s.Source
	}
	if !set["effect"] && s.EffectImage != "" {
		*effect = s.EffectImage
	}
}

func parseChannel(name string) (lic.Channel, error) {
	switch name {
	case channelHue:
		return lic.ChannelHue, nil
	case channelSaturation:
		return lic.ChannelSaturation, nil
	case channelBrightness:
		return lic.ChannelBrightness, nil
	}
	return 0, fmt.Errorf("unsupported effect channel: %q", name)
}

func parseOperator(name string) (lic.Operator, error) {
	switch name {
	case operatorDerivative:
		return lic.OperatorDerivative, nil
	case operatorGradient:
		return lic.OperatorGradient, nil
	}
	return 0, fmt.Errorf("unsupported effect operator: %q", name)
}

func parseSource(name string) (lic.ConvolveSource, error) {
	switch name {
	case convolveNoise:
		return lic.ConvolveNoise, nil
	case convolveImage:
		return lic.ConvolveImage, nil
	}
	return 0, fmt.Errorf("unsupported convolve source: %q", name)
}

// inSlice checks if the item exists in the slice.
func inSlice(item string, slice []string) bool {
	for _, it := range slice {
		if it == item {
			return true
		}
	}
	return false
}
