package services

import (
	"regexp"
	"strings"

	"github.com/slabworks/card-pos/backend/internal/models"
)

var (
	numericGradePattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	onePieceSetPattern  = regexp.MustCompile(`(?i)^(OP\d+[A-Z]?)-(.+)$`)
)

// gamePrefixes maps leading phrases on PSA set strings to a game.
// Evaluated in order, first match wins, and the order is load-bearing:
// a later pattern sharing a leading token with an earlier one would
// never fire. Do not reorder without auditing the whole table.
var gamePrefixes = []struct {
	pattern *regexp.Regexp
	game    models.Game
}{
	{regexp.MustCompile(`(?i)^POKEMON\s+`), models.GamePokemon},
	{regexp.MustCompile(`(?i)^ONE\s?PIECE\s+`), models.GameOnePiece},
	{regexp.MustCompile(`(?i)^(?:MAGIC:\s*THE\s*GATHERING|MAGIC|MTG)\s+`), models.GameMTG},
	{regexp.MustCompile(`(?i)^YU-?GI-?OH!?\s+`), models.GameYuGiOh},
}

// pokemonSeries maps leading series phrases on Pokemon set strings to a
// canonical series name. Same ordered first-match-wins contract as
// gamePrefixes; "EX" in particular must stay last.
var pokemonSeries = []struct {
	pattern *regexp.Regexp
	series  string
}{
	{regexp.MustCompile(`(?i)^SWORD\s*(?:&|AND)\s*SHIELD\s+`), "Sword & Shield"},
	{regexp.MustCompile(`(?i)^SUN\s*(?:&|AND)\s*MOON\s+`), "Sun & Moon"},
	{regexp.MustCompile(`(?i)^XY\s+`), "XY"},
	{regexp.MustCompile(`(?i)^BLACK\s*(?:&|AND)\s*WHITE\s+`), "Black & White"},
	{regexp.MustCompile(`(?i)^SCARLET\s*(?:&|AND)\s*VIOLET\s+`), "Scarlet & Violet"},
	{regexp.MustCompile(`(?i)^DIAMOND\s*(?:&|AND)\s*PEARL\s+`), "Diamond & Pearl"},
	{regexp.MustCompile(`(?i)^HEARTGOLD\s*(?:&|AND)\s*SOULSILVER\s+`), "HeartGold & SoulSilver"},
	{regexp.MustCompile(`(?i)^PLATINUM\s+`), "Platinum"},
	{regexp.MustCompile(`(?i)^EX\s+`), "EX"},
}

// ExtractNumericGrade pulls the first decimal number out of a PSA grade
// string ("GEM MT 10" -> "10", "MINT 9" -> "9"). Returns "" when the
// string carries no number.
func ExtractNumericGrade(grade string) string {
	return numericGradePattern.FindString(grade)
}

// DetectGameFromCategoryID maps a product-search category id to a game.
// Unknown or missing ids fall back to pokemon; the fallback is a design
// default, not evidence the card actually is Pokemon.
func DetectGameFromCategoryID(categoryID int) models.Game {
	switch categoryID {
	case 3:
		return models.GamePokemon
	case 68:
		return models.GameOnePiece
	case 1:
		return models.GameMTG
	case 2:
		return models.GameYuGiOh
	default:
		return models.GamePokemon
	}
}

// ParsePSARecord normalizes a raw PSA certificate record into a card
// identity. Total function: a record with an absent set yields an
// undetected game and empty set fields, never an error. The game is
// derived exclusively from recognized prefixes of the set string, never
// from the card name.
func ParsePSARecord(raw models.RawPSARecord) models.ParsedCardIdentity {
	identity := models.ParsedCardIdentity{
		CardName:     ToTitleCase(CleanPSACardName(raw.Name)),
		NumericGrade: ExtractNumericGrade(raw.Grade),
		// PSA card numbers are already canonical; passed through as-is.
		CardNumber: raw.Number,
	}

	rest := strings.TrimSpace(raw.Set)
	if rest == "" {
		return identity
	}

	for _, gp := range gamePrefixes {
		if loc := gp.pattern.FindStringIndex(rest); loc != nil {
			identity.Game = gp.game
			rest = strings.TrimSpace(rest[loc[1]:])
			break
		}
	}

	// One Piece labels embed the set code in the set string ("OP11-A
	// Fist Of Divine Speed"). Display keeps the coded form, product
	// search needs the bare lexical name, so the two set names diverge
	// here on purpose.
	if m := onePieceSetPattern.FindStringSubmatch(rest); m != nil {
		code := strings.ToUpper(m[1])
		lexical := ToTitleCase(strings.TrimSpace(m[2]))
		if identity.Game == "" {
			identity.Game = models.GameOnePiece
		}
		identity.SetCode = code
		identity.SetName = lexical + " - " + code
		identity.TCGSetName = lexical
		return identity
	}
	if identity.Game == models.GameOnePiece {
		name := ToTitleCase(rest)
		identity.SetName = name
		identity.TCGSetName = name
		return identity
	}

	if identity.Game == models.GamePokemon {
		for _, sp := range pokemonSeries {
			if loc := sp.pattern.FindStringIndex(rest); loc != nil {
				identity.Series = sp.series
				rest = strings.TrimSpace(rest[loc[1]:])
				break
			}
		}
	}

	name := ToTitleCase(rest)
	identity.SetName = name
	identity.TCGSetName = name
	return identity
}
