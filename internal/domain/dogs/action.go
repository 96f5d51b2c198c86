package dogs

// ActionKind identifies a care action a reminder asks for or a log records.
type ActionKind string

// Care actions. Toilet is the umbrella action whose alarm expands into the
// concrete outcome actions below it.
const (
	ActionFeed     ActionKind = "feed"
	ActionWater    ActionKind = "freshWater"
	ActionWalk     ActionKind = "walk"
	ActionBrush    ActionKind = "brush"
	ActionBathe    ActionKind = "bathe"
	ActionMedicine ActionKind = "medicine"
	ActionToilet   ActionKind = "toilet"
	ActionCustom   ActionKind = "custom"

	// Toilet outcomes, loggable but never set on a reminder directly.
	ActionPee      ActionKind = "pee"
	ActionPoo      ActionKind = "poo"
	ActionBoth     ActionKind = "both"
	ActionNeither  ActionKind = "neither"
	ActionAccident ActionKind = "accident"
)

// Action pairs an action kind with the free-text name carried by custom actions.
type Action struct {
	// Kind is the enumerated action.
	Kind ActionKind
	// CustomName is the user-supplied name, meaningful only for ActionCustom.
	CustomName string
}

// displayNames maps action kinds to their user-facing titles.
//
//nolint:gochecknoglobals // Static lookup table.
var displayNames = map[ActionKind]string{
	ActionFeed:     "Feed",
	ActionWater:    "Fresh Water",
	ActionWalk:     "Walk",
	ActionBrush:    "Brush",
	ActionBathe:    "Bathe",
	ActionMedicine: "Medicine",
	ActionToilet:   "Potty",
	ActionPee:      "Pee",
	ActionPoo:      "Poo",
	ActionBoth:     "Pee & Poo",
	ActionNeither:  "Didn't Go",
	ActionAccident: "Accident",
}

// DisplayName returns the user-facing title of the action.
// Custom actions render their free-text name.
func (a Action) DisplayName() string {
	if a.Kind == ActionCustom && a.CustomName != "" {
		return a.CustomName
	}

	if name, ok := displayNames[a.Kind]; ok {
		return name
	}

	return string(a.Kind)
}

// IsToilet reports whether the action expands into the toilet outcome menu.
func (a Action) IsToilet() bool {
	return a.Kind == ActionToilet
}

// ToiletOutcomes returns the fixed sub-outcomes a toilet alarm offers,
// each a distinct loggable action.
func ToiletOutcomes() []ActionKind {
	return []ActionKind{ActionPee, ActionPoo, ActionBoth, ActionNeither, ActionAccident}
}
