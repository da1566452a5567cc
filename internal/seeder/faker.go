package seeder

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jaswdr/faker"
)

// maxUniqueAttempts bounds retries for a unique field before giving up.
const maxUniqueAttempts = 1000

type GeneratorOptions struct {
	// Seed fixes the random streams. Zero picks a time based seed.
	Seed int64
	// Now anchors age based dates. Zero means time.Now().
	Now time.Time
	// Unique lists "table.column" fields whose values must not repeat.
	Unique []string
}

type DataGenerator struct {
	rand   *rand.Rand
	faker  faker.Faker
	seed   int64
	now    time.Time
	unique map[string]bool
	seen   map[string]map[string]struct{}
}

func NewDataGenerator(opts GeneratorOptions) *DataGenerator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	unique := make(map[string]bool, len(opts.Unique))
	for _, field := range opts.Unique {
		unique[strings.ToLower(field)] = true
	}

	return &DataGenerator{
		rand:   rand.New(rand.NewSource(seed)),
		faker:  faker.NewWithSeed(rand.NewSource(seed ^ 0x5eed)),
		seed:   seed,
		now:    truncateDay(now),
		unique: unique,
		seen:   make(map[string]map[string]struct{}),
	}
}

func (g *DataGenerator) Seed() int64 {
	return g.seed
}

func (g *DataGenerator) Now() time.Time {
	return g.now
}

func (g *DataGenerator) IsUnique(table, column string) bool {
	return g.unique[fieldName(table, column)]
}

// IntBetween returns a uniform int in [min, max].
func (g *DataGenerator) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + g.rand.Intn(max-min+1)
}

func (g *DataGenerator) Choice(values []string) string {
	return values[g.rand.Intn(len(values))]
}

// Pick samples one key with replacement.
func (g *DataGenerator) Pick(keys []int) int {
	return keys[g.rand.Intn(len(keys))]
}

// Chance reports true with probability p.
func (g *DataGenerator) Chance(p float64) bool {
	return g.rand.Float64() < p
}

// SampleDistinct draws n keys without replacement.
func (g *DataGenerator) SampleDistinct(keys []int, n int) ([]int, error) {
	if n > len(keys) {
		return nil, fmt.Errorf("%w: need %d distinct values, have %d", ErrUndersupply, n, len(keys))
	}
	perm := g.rand.Perm(len(keys))
	sample := make([]int, n)
	for i := 0; i < n; i++ {
		sample[i] = keys[perm[i]]
	}
	return sample, nil
}

// DateBetween returns a day in [start, end], both inclusive.
func (g *DataGenerator) DateBetween(start, end time.Time) time.Time {
	start, end = truncateDay(start), truncateDay(end)
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return start
	}
	return start.AddDate(0, 0, g.rand.Intn(days+1))
}

// DateOfBirth returns a birth date for someone aged minAge..maxAge today.
func (g *DataGenerator) DateOfBirth(minAge, maxAge int) time.Time {
	start := yearsBefore(g.now, maxAge+1).AddDate(0, 0, 1)
	end := yearsBefore(g.now, minAge)
	return g.DateBetween(start, end)
}

// yearsBefore moves t back n calendar years, clamping Feb 29 to Feb 28
// instead of rolling over into March.
func yearsBefore(t time.Time, n int) time.Time {
	year := t.Year() - n
	d := t.Day()
	if last := time.Date(year, t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day(); d > last {
		d = last
	}
	return time.Date(year, t.Month(), d, 0, 0, 0, 0, time.UTC)
}

func (g *DataGenerator) ClockTime() string {
	return fmt.Sprintf("%02d:%02d:%02d", g.rand.Intn(24), g.rand.Intn(60), g.rand.Intn(60))
}

func (g *DataGenerator) FirstName() string {
	return g.faker.Person().FirstName()
}

func (g *DataGenerator) LastName() string {
	return g.faker.Person().LastName()
}

func (g *DataGenerator) Name() string {
	return g.faker.Person().Name()
}

func (g *DataGenerator) Email() string {
	return g.faker.Internet().Email()
}

// Address returns a single line "number street, city, state zip" address.
func (g *DataGenerator) Address() string {
	addr := g.faker.Address()
	return fmt.Sprintf("%d %s, %s, %s %s",
		g.IntBetween(1, 9999), addr.StreetName(), addr.City(), addr.StateAbbr(), addr.PostCode())
}

func (g *DataGenerator) Word() string {
	word := g.faker.Lorem().Word()
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

// Text returns a lorem sentence of at most maxChars characters, cut at a
// word boundary.
func (g *DataGenerator) Text(maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	words := g.faker.Lorem().Words(g.IntBetween(3, maxChars/4+3))

	var b strings.Builder
	for _, w := range words {
		// room for the separator and the closing period
		if b.Len()+len(w)+2 > maxChars {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() == 0 {
		w := words[0]
		if len(w) > maxChars {
			w = w[:maxChars]
		}
		return strings.ToUpper(w[:1]) + w[1:]
	}

	text := b.String()
	return strings.ToUpper(text[:1]) + text[1:] + "."
}

// Title is short text with the trailing period removed.
func (g *DataGenerator) Title(maxChars int) string {
	return strings.Trim(g.Text(maxChars), ".")
}

// ISBN13 returns a hyphenated ISBN-13 with a valid check digit.
func (g *DataGenerator) ISBN13() string {
	digits := make([]int, 12)
	digits[0], digits[1], digits[2] = 9, 7, 8+g.rand.Intn(2)
	for i := 3; i < 12; i++ {
		digits[i] = g.rand.Intn(10)
	}
	sum := 0
	for i, d := range digits {
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	check := (10 - sum%10) % 10

	var b strings.Builder
	for i, d := range digits {
		if i == 3 || i == 4 || i == 8 {
			b.WriteByte('-')
		}
		b.WriteByte(byte('0' + d))
	}
	fmt.Fprintf(&b, "-%d", check)
	return b.String()
}

// Field runs gen once, or until it yields an unseen value when table.column
// is flagged unique.
func (g *DataGenerator) Field(table, column string, gen func() string) (string, error) {
	field := fieldName(table, column)
	if !g.unique[field] {
		return gen(), nil
	}

	seen, ok := g.seen[field]
	if !ok {
		seen = make(map[string]struct{})
		g.seen[field] = seen
	}
	for attempt := 0; attempt < maxUniqueAttempts; attempt++ {
		v := gen()
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		return v, nil
	}
	return "", fmt.Errorf("%w: %s after %d attempts", ErrUniqueExhausted, field, maxUniqueAttempts)
}

// ClearUnique forgets values handed out for unique fields.
func (g *DataGenerator) ClearUnique() {
	g.seen = make(map[string]map[string]struct{})
}

func fieldName(table, column string) string {
	return strings.ToLower(table + "." + column)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
