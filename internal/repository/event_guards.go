package repository

import (
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
)

// The guards below hold the registration admission rules shared by the
// transactional mutations. teamMembers is the current member total
// across the event's teams; it counts against MaxParticipants alongside
// solo registrants.

func soloRegisterGuard(ev *domain.Event, teamMembers int) error {
	if !ev.RegistrationOpen {
		return ErrRegistrationClosed
	}
	if !ev.SoloCapacityLeft(teamMembers) {
		return ErrEventFull
	}
	return nil
}

// teamCreateGuard admits a new team. The leader joins as the first
// member, so the participant ceiling applies here as well as the team
// ceiling.
func teamCreateGuard(ev *domain.Event, teamMembers int) error {
	if !ev.TeamRegistrationOpen {
		return ErrRegistrationClosed
	}
	if !ev.TeamCapacityLeft() {
		return ErrEventFull
	}
	if !ev.SoloCapacityLeft(teamMembers) {
		return ErrEventFull
	}
	return nil
}

func teamJoinGuard(ev *domain.Event, team *domain.Team, teamMembers int) error {
	if !ev.TeamRegistrationOpen {
		return ErrRegistrationClosed
	}
	if ev.MaxTeamSize > 0 && len(team.Members) >= ev.MaxTeamSize {
		return ErrTeamFull
	}
	if !ev.SoloCapacityLeft(teamMembers) {
		return ErrEventFull
	}
	return nil
}
