package avalon

import "github.com/rocketscienceinc/avalon-backend/internal/entity"

// Evaluate is the pure win check over the mission history and the
// rejection counter. It returns nil while the game is undecided; three
// successful missions alone do not decide it, since the assassin still
// gets a shot at Merlin.
func Evaluate(missionResults []string, rejectedTeams int) *entity.Outcome {
	if rejectedTeams >= entity.MaxRejectedTeams {
		return &entity.Outcome{Winner: entity.AlignmentEvil, Reason: entity.ReasonFiveRejectedTeams}
	}

	failures := 0
	for _, result := range missionResults {
		if result == entity.MissionFailed {
			failures++
		}
	}

	if failures >= entity.MissionsToWin {
		return &entity.Outcome{Winner: entity.AlignmentEvil, Reason: entity.ReasonThreeFailedMissions}
	}

	return nil
}

// EvaluateAssassination decides the game from the assassin's choice.
func EvaluateAssassination(targetRole entity.Role) *entity.Outcome {
	if targetRole == entity.RoleMerlin {
		return &entity.Outcome{Winner: entity.AlignmentEvil, Reason: entity.ReasonMerlinAssassinated}
	}

	return &entity.Outcome{Winner: entity.AlignmentGood, Reason: entity.ReasonAssassinationFailed}
}
