package search

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mnakhyar/pasal/internal/config"
	"github.com/mnakhyar/pasal/internal/models"
	"github.com/mnakhyar/pasal/internal/storage"
)

var digitRunRe = regexp.MustCompile(`[0-9]+`)

// identityResolver recognizes structured citations ("UU 13 2003",
// "undang undang 13 tahun 2003") and answers them by direct lookup,
// bypassing ranking. Citation queries have one unambiguous intended answer.
type identityResolver struct {
	catalog *typeCatalog
	store   storage.Storage
	cfg     *config.SearchConfig
	logger  *zap.Logger
}

// resolve returns the identity candidates for a citation query, or nil when
// the query is not a resolvable citation and the next tier should run.
// The request filter is still ANDed even on this fast path.
func (r *identityResolver) resolve(ctx context.Context, safeQuery string, filter models.Filter) ([]*models.Candidate, error) {
	rt := r.recognizeType(safeQuery)
	if rt == nil {
		return nil, nil
	}

	numbers := digitRunRe.FindAllString(safeQuery, -1)
	if len(numbers) == 0 {
		// Type recognized but nothing to look up; not treated as a guarantee.
		return nil, nil
	}

	works, err := r.lookupWorks(ctx, rt, numbers, filter)
	if err != nil {
		return nil, err
	}
	if len(works) == 0 {
		return nil, nil
	}

	candidates := make([]*models.Candidate, 0, len(works))
	for _, w := range works {
		c, err := r.store.RepresentativeCandidate(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		c.Raw = r.cfg.IdentityScore
		c.Score = r.cfg.IdentityScore
		candidates = append(candidates, c)
	}
	r.logger.Debug("identity citation resolved",
		zap.String("type", rt.Code),
		zap.Strings("numbers", numbers),
		zap.Int("works", len(candidates)))
	return candidates, nil
}

// recognizeType matches the leading one or two tokens against the catalog
// codes (two-token form first, for codes like "TAP MPR"), then falls back to
// a longest-prefix match against the normalized local names.
func (r *identityResolver) recognizeType(safeQuery string) *models.RegulationType {
	tokens := strings.Fields(safeQuery)
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) >= 2 {
		two := strings.ToUpper(tokens[0] + " " + tokens[1])
		if rt := r.catalog.matchCode(two); rt != nil {
			return rt
		}
	}
	if rt := r.catalog.matchCode(strings.ToUpper(tokens[0])); rt != nil {
		return rt
	}
	return r.catalog.matchNamePrefix(normalizeTypeName(safeQuery))
}

// lookupWorks tries the number/year assignments in precedence order:
// with two numeric tokens, (number, year) then the reverse; with one,
// number match then year match. Year tokens longer than 4 digits are never
// treated as years.
func (r *identityResolver) lookupWorks(ctx context.Context, rt *models.RegulationType, numbers []string, filter models.Filter) ([]*models.Work, error) {
	try := func(number *string, year *int) ([]*models.Work, error) {
		return r.store.FindWorks(ctx, storage.WorkLookup{
			RegulationTypeID: rt.ID,
			Number:           number,
			Year:             year,
			Filter:           filter,
			Limit:            r.cfg.IdentityWorkCap,
		})
	}

	if len(numbers) >= 2 {
		first, second := numbers[0], numbers[1]
		if y := parseYearToken(second); y != nil {
			works, err := try(&first, y)
			if err != nil || len(works) > 0 {
				return works, err
			}
		}
		if y := parseYearToken(first); y != nil {
			works, err := try(&second, y)
			if err != nil || len(works) > 0 {
				return works, err
			}
		}
		return nil, nil
	}

	only := numbers[0]
	works, err := try(&only, nil)
	if err != nil || len(works) > 0 {
		return works, err
	}
	if y := parseYearToken(only); y != nil {
		return try(nil, y)
	}
	return nil, nil
}

// parseYearToken returns the numeric value of a token that can plausibly be
// a year (at most 4 digits), or nil.
func parseYearToken(tok string) *int {
	if len(tok) > 4 {
		return nil
	}
	y, err := strconv.Atoi(tok)
	if err != nil || y <= 0 {
		return nil
	}
	return &y
}
