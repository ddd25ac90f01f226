package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

// namedColors maps CSS colour keywords to their sRGB values.
var namedColors = map[string]color.NRGBA{
	"black":                {0, 0, 0, 255},
	"white":                {255, 255, 255, 255},
	"red":                  {255, 0, 0, 255},
	"green":                {0, 128, 0, 255},
	"blue":                 {0, 0, 255, 255},
	"yellow":               {255, 255, 0, 255},
	"cyan":                 {0, 255, 255, 255},
	"magenta":              {255, 0, 255, 255},
	"gray":                 {128, 128, 128, 255},
	"grey":                 {128, 128, 128, 255},
	"silver":               {192, 192, 192, 255},
	"maroon":               {128, 0, 0, 255},
	"olive":                {128, 128, 0, 255},
	"lime":                 {0, 255, 0, 255},
	"aqua":                 {0, 255, 255, 255},
	"teal":                 {0, 128, 128, 255},
	"navy":                 {0, 0, 128, 255},
	"fuchsia":              {255, 0, 255, 255},
	"purple":               {128, 0, 128, 255},
	"orange":               {255, 165, 0, 255},
	"pink":                 {255, 192, 203, 255},
	"brown":                {165, 42, 42, 255},
	"coral":                {255, 127, 80, 255},
	"gold":                 {255, 215, 0, 255},
	"indigo":               {75, 0, 130, 255},
	"violet":               {238, 130, 238, 255},
	"turquoise":            {64, 224, 208, 255},
	"salmon":               {250, 128, 114, 255},
	"khaki":                {240, 230, 140, 255},
	"lavender":             {230, 230, 250, 255},
	"beige":                {245, 245, 220, 255},
	"ivory":                {255, 255, 240, 255},
	"chocolate":            {210, 105, 30, 255},
	"crimson":              {220, 20, 60, 255},
	"tomato":               {255, 99, 71, 255},
	"orchid":               {218, 112, 214, 255},
	"plum":                 {221, 160, 221, 255},
	"tan":                  {210, 180, 140, 255},
	"skyblue":              {135, 206, 235, 255},
	"steelblue":            {70, 130, 180, 255},
	"slategray":            {112, 128, 144, 255},
	"slategrey":            {112, 128, 144, 255},
	"royalblue":            {65, 105, 225, 255},
	"seagreen":             {46, 139, 87, 255},
	"forestgreen":          {34, 139, 34, 255},
	"firebrick":            {178, 34, 34, 255},
	"hotpink":              {255, 105, 180, 255},
	"deeppink":             {255, 20, 147, 255},
	"dodgerblue":           {30, 144, 255, 255},
	"midnightblue":         {25, 25, 112, 255},
	"rebeccapurple":        {102, 51, 153, 255},
	"whitesmoke":           {245, 245, 245, 255},
	"gainsboro":            {220, 220, 220, 255},
	"darkblue":             {0, 0, 139, 255},
	"darkgreen":            {0, 100, 0, 255},
	"darkred":              {139, 0, 0, 255},
	"darkorange":           {255, 140, 0, 255},
	"darkviolet":           {148, 0, 211, 255},
	"darkcyan":             {0, 139, 139, 255},
	"darkmagenta":          {139, 0, 139, 255},
	"darkslategray":        {47, 79, 79, 255},
	"darkslategrey":        {47, 79, 79, 255},
	"darkgray":             {169, 169, 169, 255},
	"darkgrey":             {169, 169, 169, 255},
	"lightblue":            {173, 216, 230, 255},
	"lightgreen":           {144, 238, 144, 255},
	"lightgray":            {211, 211, 211, 255},
	"lightgrey":            {211, 211, 211, 255},
	"lightyellow":          {255, 255, 224, 255},
	"lightpink":            {255, 182, 193, 255},
	"lightcoral":           {240, 128, 128, 255},
	"lightsalmon":          {255, 160, 122, 255},
	"lightseagreen":        {32, 178, 170, 255},
	"lightskyblue":         {135, 206, 250, 255},
	"limegreen":            {50, 205, 50, 255},
	"mediumblue":           {0, 0, 205, 255},
	"mediumpurple":         {147, 112, 219, 255},
	"mediumseagreen":       {60, 179, 113, 255},
	"orangered":            {255, 69, 0, 255},
	"palegreen":            {152, 251, 152, 255},
	"peru":                 {205, 133, 63, 255},
	"sienna":               {160, 82, 45, 255},
	"springgreen":          {0, 255, 127, 255},
	"yellowgreen":          {154, 205, 50, 255},
	"cornflowerblue":       {100, 149, 237, 255},
	"cadetblue":            {95, 158, 160, 255},
	"aquamarine":           {127, 255, 212, 255},
	"chartreuse":           {127, 255, 0, 255},
	"goldenrod":            {218, 165, 32, 255},
	"olivedrab":            {107, 142, 35, 255},
	"powderblue":           {176, 224, 230, 255},
	"snow":                 {255, 250, 250, 255},
	"honeydew":             {240, 255, 240, 255},
	"mintcream":            {245, 255, 250, 255},
	"azure":                {240, 255, 255, 255},
	"aliceblue":            {240, 248, 255, 255},
	"ghostwhite":           {248, 248, 255, 255},
	"seashell":             {255, 245, 238, 255},
	"linen":                {250, 240, 230, 255},
	"wheat":                {245, 222, 179, 255},
	"moccasin":             {255, 228, 181, 255},
	"navajowhite":          {255, 222, 173, 255},
	"peachpuff":            {255, 218, 185, 255},
	"mistyrose":            {255, 228, 225, 255},
	"lavenderblush":        {255, 240, 245, 255},
	"papayawhip":           {255, 239, 213, 255},
	"blanchedalmond":       {255, 235, 205, 255},
	"bisque":               {255, 228, 196, 255},
	"cornsilk":             {255, 248, 220, 255},
	"lemonchiffon":         {255, 250, 205, 255},
	"floralwhite":          {255, 250, 240, 255},
	"oldlace":              {253, 245, 230, 255},
	"antiquewhite":         {250, 235, 215, 255},
	"burlywood":            {222, 184, 135, 255},
	"rosybrown":            {188, 143, 143, 255},
	"sandybrown":           {244, 164, 96, 255},
	"saddlebrown":          {139, 69, 19, 255},
	"indianred":            {205, 92, 92, 255},
	"palevioletred":        {219, 112, 147, 255},
	"mediumvioletred":      {199, 21, 133, 255},
	"darkorchid":           {153, 50, 204, 255},
	"blueviolet":           {138, 43, 226, 255},
	"slateblue":            {106, 90, 205, 255},
	"darkslateblue":        {72, 61, 139, 255},
	"deepskyblue":          {0, 191, 255, 255},
	"darkturquoise":        {0, 206, 209, 255},
	"mediumturquoise":      {72, 209, 204, 255},
	"paleturquoise":        {175, 238, 238, 255},
	"darkseagreen":         {143, 188, 143, 255},
	"darkolivegreen":       {85, 107, 47, 255},
	"darkkhaki":            {189, 183, 107, 255},
	"darkgoldenrod":        {184, 134, 11, 255},
	"darksalmon":           {233, 150, 122, 255},
	"lawngreen":            {124, 252, 0, 255},
	"greenyellow":          {173, 255, 47, 255},
	"mediumspringgreen":    {0, 250, 154, 255},
	"mediumaquamarine":     {102, 205, 170, 255},
	"mediumorchid":         {186, 85, 211, 255},
	"mediumslateblue":      {123, 104, 238, 255},
	"lightsteelblue":       {176, 196, 222, 255},
	"lightslategray":       {119, 136, 153, 255},
	"lightslategrey":       {119, 136, 153, 255},
	"lightcyan":            {224, 255, 255, 255},
	"lightgoldenrodyellow": {250, 250, 210, 255},
	"palegoldenrod":        {238, 232, 170, 255},
	"thistle":              {216, 191, 216, 255},
	"dimgray":              {105, 105, 105, 255},
	"dimgrey":              {105, 105, 105, 255},
	"transparent":          {0, 0, 0, 0},
}

// ParseColor parses a CSS colour string into a straight-alpha gg colour.
// Accepted forms are keywords, #rgb, #rgba, #rrggbb, #rrggbbaa,
// rgb(), rgba(), hsl() and hsla().
func ParseColor(s string) (gg.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return gg.RGBA{}, fmt.Errorf("%w: empty string", ErrInvalidColor)
	}
	lower := strings.ToLower(s)

	if c, ok := namedColors[lower]; ok {
		return fromNRGBA(c), nil
	}
	if strings.HasPrefix(lower, "#") {
		return parseHex(lower[1:])
	}

	name, args, ok := splitFunc(lower)
	if !ok {
		return gg.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	switch name {
	case "rgb", "rgba":
		return parseRGBArgs(args)
	case "hsl", "hsla":
		return parseHSLArgs(args)
	}
	return gg.RGBA{}, fmt.Errorf("%w: unknown function %q", ErrInvalidColor, name)
}

// FormatColor serializes a colour the way canvas style getters do:
// #rrggbb when opaque, rgba(r, g, b, a) otherwise.
func FormatColor(c gg.RGBA) string {
	n := toNRGBA(c)
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	a := strconv.FormatFloat(math.Round(c.A*1000)/1000, 'f', -1, 64)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", n.R, n.G, n.B, a)
}

func fromNRGBA(c color.NRGBA) gg.RGBA {
	return gg.RGBA{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

func toNRGBA(c gg.RGBA) color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}

func parseHex(h string) (gg.RGBA, error) {
	var digits []uint64
	for _, r := range h {
		d, err := strconv.ParseUint(string(r), 16, 8)
		if err != nil {
			return gg.RGBA{}, fmt.Errorf("%w: bad hex digit %q", ErrInvalidColor, r)
		}
		digits = append(digits, d)
	}

	var c color.NRGBA
	switch len(digits) {
	case 3, 4:
		c = color.NRGBA{uint8(digits[0] * 17), uint8(digits[1] * 17), uint8(digits[2] * 17), 255}
		if len(digits) == 4 {
			c.A = uint8(digits[3] * 17)
		}
	case 6, 8:
		c = color.NRGBA{
			uint8(digits[0]<<4 | digits[1]),
			uint8(digits[2]<<4 | digits[3]),
			uint8(digits[4]<<4 | digits[5]),
			255,
		}
		if len(digits) == 8 {
			c.A = uint8(digits[6]<<4 | digits[7])
		}
	default:
		return gg.RGBA{}, fmt.Errorf("%w: hex length %d", ErrInvalidColor, len(digits))
	}
	return fromNRGBA(c), nil
}

// splitFunc splits "name(a, b, c)" or "name(a b c / d)" into its name and
// argument list.
func splitFunc(s string) (string, []string, bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", nil, false
	}
	name := strings.TrimSpace(s[:open])
	body := s[open+1 : len(s)-1]
	body = strings.ReplaceAll(body, "/", " ")
	body = strings.ReplaceAll(body, ",", " ")
	return name, strings.Fields(body), true
}

func parseRGBArgs(args []string) (gg.RGBA, error) {
	if len(args) != 3 && len(args) != 4 {
		return gg.RGBA{}, fmt.Errorf("%w: rgb() takes 3 or 4 values, got %d", ErrInvalidColor, len(args))
	}
	var ch [3]float64
	for i := range ch {
		v, err := parseChannel(args[i])
		if err != nil {
			return gg.RGBA{}, err
		}
		ch[i] = v
	}
	a := 1.0
	if len(args) == 4 {
		v, err := parseAlpha(args[3])
		if err != nil {
			return gg.RGBA{}, err
		}
		a = v
	}
	return gg.RGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, nil
}

// parseChannel reads a 0-255 number or a percentage into [0,1].
func parseChannel(s string) (float64, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: channel %q", ErrInvalidColor, s)
		}
		return clamp01(v / 100), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: channel %q", ErrInvalidColor, s)
	}
	return clamp01(math.Round(v) / 255), nil
}

func parseAlpha(s string) (float64, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: alpha %q", ErrInvalidColor, s)
		}
		return clamp01(v / 100), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: alpha %q", ErrInvalidColor, s)
	}
	return clamp01(v), nil
}

func parseHSLArgs(args []string) (gg.RGBA, error) {
	if len(args) != 3 && len(args) != 4 {
		return gg.RGBA{}, fmt.Errorf("%w: hsl() takes 3 or 4 values, got %d", ErrInvalidColor, len(args))
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return gg.RGBA{}, fmt.Errorf("%w: hue %q", ErrInvalidColor, args[0])
	}
	sat, err := parsePercent(args[1])
	if err != nil {
		return gg.RGBA{}, err
	}
	light, err := parsePercent(args[2])
	if err != nil {
		return gg.RGBA{}, err
	}
	a := 1.0
	if len(args) == 4 {
		if a, err = parseAlpha(args[3]); err != nil {
			return gg.RGBA{}, err
		}
	}
	r, g, b := hslToRGB(math.Mod(math.Mod(h, 360)+360, 360)/360, sat, light)
	return gg.RGBA{R: r, G: g, B: b, A: a}, nil
}

func parsePercent(s string) (float64, error) {
	p, ok := strings.CutSuffix(s, "%")
	if !ok {
		return 0, fmt.Errorf("%w: expected percentage, got %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseFloat(p, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: percentage %q", ErrInvalidColor, s)
	}
	return clamp01(v / 100), nil
}

func hslToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return hueToRGB(p, q, h+1.0/3), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}
