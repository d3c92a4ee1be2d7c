package schedule

import (
	"strings"

	"github.com/samber/mo"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// SentinelID is assigned when no resolver in a chain yields a value.
// Reference data ids start at "1", so the sentinel points at the first record
// of a freshly seeded source.
const SentinelID = "1"

// AutoChoice is the explicit-choice spelling that asks for auto resolution
const AutoChoice = "auto"

// Resolver yields a candidate id or None
type Resolver func() mo.Option[string]

// FirstPresent tries resolvers in order and returns the first present value
func FirstPresent(resolvers ...Resolver) mo.Option[string] {
	for _, resolve := range resolvers {
		if value, ok := resolve().Get(); ok && value != "" {
			return mo.Some(value)
		}
	}
	return mo.None[string]()
}

// Resolve runs the chain and falls back to SentinelID
func Resolve(resolvers ...Resolver) string {
	return FirstPresent(resolvers...).OrElse(SentinelID)
}

// ParseChoice turns a user-entered location choice into an option.
// "" and "auto" both mean no explicit choice.
func ParseChoice(raw string) mo.Option[string] {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, AutoChoice) {
		return mo.None[string]()
	}
	return mo.Some(raw)
}

// ResolveLocation picks the location for a new shift: the explicit choice,
// else the user's first eligible location, else the first global location,
// else SentinelID
func ResolveLocation(user model.User, explicit mo.Option[string], locations []model.Location) string {
	return Resolve(
		func() mo.Option[string] { return explicit },
		firstOf(user.Locations),
		func() mo.Option[string] {
			if len(locations) == 0 {
				return mo.None[string]()
			}
			return mo.Some(locations[0].ID)
		},
	)
}

// ResolvePosition picks the position for a new shift. There is no explicit
// position choice in any creation flow.
func ResolvePosition(user model.User, positions []model.Position) string {
	return Resolve(
		firstOf(user.Positions),
		func() mo.Option[string] {
			if len(positions) == 0 {
				return mo.None[string]()
			}
			return mo.Some(positions[0].ID)
		},
	)
}

func firstOf(ids []string) Resolver {
	return func() mo.Option[string] {
		if len(ids) == 0 {
			return mo.None[string]()
		}
		return mo.Some(ids[0])
	}
}
