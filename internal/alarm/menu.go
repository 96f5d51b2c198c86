package alarm

import (
	"github.com/pawdue/pawdue/internal/domain/dogs"
	"github.com/pawdue/pawdue/internal/presentation"
)

// buildDialog derives the response menu for a due reminder: Dismiss first,
// then the log choices, then Snooze. A toileting alarm expands into one log
// choice per outcome; every other action gets a single log choice mirroring
// the reminder's own action.
func (c *Coordinator) buildDialog(dogName string, s *Session) *presentation.Dialog {
	action := s.Reminder.Action

	choices := []presentation.Choice{{
		Title:    "Dismiss",
		OnSelect: func() { c.applyDismiss(s) },
	}}

	if action.IsToilet() {
		for _, outcome := range dogs.ToiletOutcomes() {
			outcome := outcome

			choices = append(choices, presentation.Choice{
				Title:    "Log " + dogs.Action{Kind: outcome}.DisplayName(),
				OnSelect: func() { c.applyLog(s, outcome) },
			})
		}
	} else {
		choices = append(choices, presentation.Choice{
			Title:    "Log " + action.DisplayName(),
			OnSelect: func() { c.applyLog(s, action.Kind) },
		})
	}

	choices = append(choices, presentation.Choice{
		Title:    "Snooze",
		OnSelect: func() { c.applySnooze(s) },
	})

	return &presentation.Dialog{
		Category: presentation.CategoryAlarm,
		Title:    dogName,
		Message:  action.DisplayName() + " is due.",
		Choices:  choices,
	}
}
