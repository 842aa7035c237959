package generator

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel values returned in place of a real value.
const (
	UnknownTypePrefix  = "Unknown type: "
	EnumMissingChoices = "ERROR: enum type requires a non-empty 'choices' list"
	InvalidRegexPrefix = "ERROR: invalid regex "
	InvalidDefPrefix   = "ERROR: invalid field definition: "
)

// float64 carries 15 significant decimal digits exactly.
const maxFloatDigits = 15

// Value produces one value for a compiled definition. It never fails: data
// problems turn into sentinel strings.
func (g *Generator) Value(def Definition) interface{} {
	if def.Kind == KindInvalid {
		return InvalidDefPrefix + def.Reason
	}

	if choices := def.choices(); len(choices) > 0 {
		return choices[g.src.IntRange(0, len(choices)-1)]
	}

	if def.Type == TypeString {
		if pattern, ok := def.regex(); ok {
			if def.badRegex {
				return fmt.Sprintf("%s'%s'", InvalidRegexPrefix, pattern)
			}
			return g.src.faker.Regex(pattern)
		}
	}

	f := g.src.faker
	switch def.Type {
	case TypeString:
		return g.text(def.intConstraint(KeyMaxLength, DefaultMaxLength))
	case TypeInteger:
		lo := def.intConstraint(KeyMin, DefaultIntMin)
		hi := def.intConstraint(KeyMax, DefaultIntMax)
		return int64(g.src.IntRange(lo, hi))
	case TypeFloat:
		return g.decimal(
			def.intConstraint(KeyPrecision, DefaultPrecision),
			def.intConstraint(KeyScale, DefaultScale),
		)
	case TypeBoolean:
		return g.src.Bool()
	case TypeEnum:
		// a non-empty choices list was handled above
		return EnumMissingChoices
	case TypeUUID:
		return g.uuid()
	case TypeName:
		return f.Name()
	case TypeEmail:
		return f.Email()
	case TypePhone:
		return f.Phone()
	case TypeDate:
		return g.date()
	case TypeImageURL:
		return g.imageURL(
			def.intConstraint(KeyWidth, DefaultImageWidth),
			def.intConstraint(KeyHeight, DefaultImageHeight),
		)
	case TypeFileURL:
		return g.fileURL(def.stringConstraint(KeyExtension, DefaultExtension))
	case TypeObject:
		return g.AssembleRecord(def.Schema)
	case TypeArray:
		return g.array(def)
	}
	return UnknownTypePrefix + def.RawType
}

func (g *Generator) array(def Definition) []interface{} {
	lo, hi := def.sizeRange()
	n := g.src.IntRange(min(lo, g.config.MaxArraySize), min(hi, g.config.MaxArraySize))

	items := def.Items
	if items == nil {
		items = &Definition{Kind: KindShorthand, Type: TypeString, RawType: TypeString, Constraints: NewObject()}
	}

	out := make([]interface{}, n)
	for i := range out {
		out[i] = g.Value(*items)
	}
	return out
}

// text builds a sentence of whole words no longer than maxLen characters.
// Limits too small to hold a word yield random letters instead.
func (g *Generator) text(maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	maxLen = min(maxLen, g.config.MaxStringLength)
	f := g.src.faker

	var b strings.Builder
	for i := 0; i < maxLen; i++ {
		w := f.Word()
		if w == "" {
			continue
		}
		if b.Len() == 0 {
			w = strings.ToUpper(w[:1]) + w[1:]
		}
		need := len(w) + 1 // trailing period
		if b.Len() > 0 {
			need++
		}
		if b.Len()+need > maxLen {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() == 0 {
		return f.LetterN(uint(maxLen))
	}
	b.WriteByte('.')
	return b.String()
}

// decimal returns a positive number with at most precision integer digits and
// exactly scale fractional digits of resolution.
func (g *Generator) decimal(precision, scale int) float64 {
	if precision < 0 {
		precision = DefaultPrecision
	}
	if scale < 0 {
		scale = DefaultScale
	}
	if precision > maxFloatDigits {
		precision = maxFloatDigits
	}
	if precision+scale > maxFloatDigits {
		scale = maxFloatDigits - precision
	}
	if precision == 0 && scale == 0 {
		precision = 1
	}

	intPart, frac := 0, 0
	if precision > 0 {
		intPart = g.src.IntRange(0, int(math.Pow10(precision))-1)
	}
	if scale > 0 {
		frac = g.src.IntRange(0, int(math.Pow10(scale))-1)
	}
	if intPart == 0 && frac == 0 {
		if scale > 0 {
			frac = 1
		} else {
			intPart = 1
		}
	}

	div := math.Pow10(scale)
	return math.Round((float64(intPart)+float64(frac)/div)*div) / div
}

func (g *Generator) uuid() string {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// date picks a day of the current calendar year.
func (g *Generator) date() string {
	now := g.config.Now()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	day := start.AddDate(0, 0, g.src.IntRange(0, last.YearDay()-1))
	return day.Format(time.DateOnly)
}

func (g *Generator) imageURL(width, height int) string {
	if width <= 0 {
		width = DefaultImageWidth
	}
	if height <= 0 {
		height = DefaultImageHeight
	}
	seed := url.PathEscape(strings.ToLower(g.src.faker.Word()))
	return fmt.Sprintf("https://picsum.photos/seed/%s/%d/%d", seed, width, height)
}

func (g *Generator) fileURL(extension string) string {
	ext := strings.TrimPrefix(strings.TrimSpace(extension), ".")
	if ext == "" {
		ext = DefaultExtension
	}
	f := g.src.faker
	name := url.PathEscape(strings.ToLower(f.Word()))
	return fmt.Sprintf("https://%s/files/%s-%d.%s", f.DomainName(), name, g.src.IntRange(1000, 9999), url.PathEscape(ext))
}
