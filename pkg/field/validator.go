package field

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Tags registered on the shared rule set.
const (
	EmailTag = "email_local"
	PhoneTag = "cn_mobile"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)
	// numberPrefix is the longest leading decimal literal, as browsers read
	// "5abc" as 5.
	numberPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)
)

var rules = mustRules()

func mustRules() *validator.Validate {
	v := validator.New()
	if err := RegisterTags(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterTags adds the email and phone patterns to v as EmailTag and
// PhoneTag. The builtin email tag follows RFC 5322 and rejects addresses
// emailPattern accepts, so it is not used.
func RegisterTags(v *validator.Validate) error {
	if err := v.RegisterValidation(EmailTag, matches(emailPattern)); err != nil {
		return err
	}
	return v.RegisterValidation(PhoneTag, matches(phonePattern))
}

func matches(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

// Option customises a Validator.
type Option func(*Validator)

// WithLocale selects the message locale. Unknown locales fall back to English.
func WithLocale(locale string) Option {
	return func(v *Validator) {
		v.locale = normalizeLocale(locale)
	}
}

// WithTranslator replaces the message source.
func WithTranslator(t Translator) Option {
	return func(v *Validator) {
		v.translator = t
	}
}

// WithMissingTranslationHandler overrides how failed lookups are rendered.
func WithMissingTranslationHandler(handler MissingTranslationHandler) Option {
	return func(v *Validator) {
		if handler != nil {
			v.onMissing = handler
		}
	}
}

// WithStrictNumbers rejects non-empty number values that are not a complete
// decimal literal. Without it the leading numeric prefix is compared against
// min and max, and values with no prefix pass.
func WithStrictNumbers() Option {
	return func(v *Validator) {
		v.strictNumbers = true
	}
}

// Validator applies the field rules. The zero value is not usable; call New.
// A Validator holds no per-field state and is safe for concurrent use.
type Validator struct {
	locale        string
	translator    Translator
	onMissing     MissingTranslationHandler
	strictNumbers bool
	rules         *validator.Validate
}

// New builds a Validator backed by the bundled message catalog.
func New(opts ...Option) *Validator {
	v := &Validator{
		locale:    DefaultLocale,
		onMissing: MissingTranslationDefault,
		rules:     rules,
	}
	if catalog, err := BundledCatalog(); err == nil {
		v.translator = catalog
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Locale reports the configured locale.
func (v *Validator) Locale() string {
	return v.locale
}

// Validate checks f against the rules in precedence order: required,
// email, phone, number bounds. The first failing rule wins.
func (v *Validator) Validate(f Field) Result {
	value := strings.TrimSpace(f.Value)
	if value == "" {
		if f.Required {
			return Invalid(v.message(MsgRequired))
		}
		return Valid()
	}

	switch f.Kind {
	case KindEmail:
		if v.rules.Var(value, EmailTag) != nil {
			return Invalid(v.message(MsgEmail))
		}
	case KindPhone:
		if v.rules.Var(value, PhoneTag) != nil {
			return Invalid(v.message(MsgPhone))
		}
	case KindNumber:
		return v.validateNumber(f, value)
	}
	return Valid()
}

func (v *Validator) validateNumber(f Field, value string) Result {
	if v.strictNumbers {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return Invalid(v.message(MsgNumber))
		}
	}
	number, ok := parseLeadingNumber(value)
	if !ok {
		return Valid()
	}
	if bound, ok := parseLeadingNumber(f.Min); ok && number < bound {
		return Invalid(v.message(MsgMin, f.Min))
	}
	if bound, ok := parseLeadingNumber(f.Max); ok && number > bound {
		return Invalid(v.message(MsgMax, f.Max))
	}
	return Valid()
}

func (v *Validator) message(key string, args ...any) string {
	if v.translator == nil {
		return v.onMissing(v.locale, key, args, ErrMissingTranslator)
	}
	text, err := v.translator.Translate(v.locale, key, args...)
	if err != nil {
		return v.onMissing(v.locale, key, args, err)
	}
	return text
}

// parseLeadingNumber reads the decimal literal at the start of raw.
func parseLeadingNumber(raw string) (float64, bool) {
	literal := numberPrefix.FindString(strings.TrimSpace(raw))
	if literal == "" {
		return 0, false
	}
	number, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, false
	}
	return number, true
}

var defaultValidator = New()

// Validate runs f through a Validator with default options.
func Validate(f Field) Result {
	return defaultValidator.Validate(f)
}
