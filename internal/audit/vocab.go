package audit

import (
	"fmt"
	"regexp"
)

// Action is a short symbolic code naming what happened
type Action string

// Station actions
const (
	ActionStationCreated Action = "STATION_CREATED"
	ActionStationUpdated Action = "STATION_UPDATED"
	ActionStationDeleted Action = "STATION_DELETED"
)

// Staff account actions
const (
	ActionUserCreated     Action = "USER_CREATED"
	ActionUserUpdated     Action = "USER_UPDATED"
	ActionUserDeleted     Action = "USER_DELETED"
	ActionUserActivated   Action = "USER_ACTIVATED"
	ActionUserDeactivated Action = "USER_DEACTIVATED"
)

// Backup, profile, reminder and role actions
const (
	ActionBackupCreated       Action = "BACKUP_CREATED"
	ActionBackupUpdated       Action = "BACKUP_UPDATED"
	ActionBackupDeleted       Action = "BACKUP_DELETED"
	ActionBackupStatusChanged Action = "BACKUP_STATUS_CHANGED"

	ActionProfileCreated Action = "PROFILE_CREATED"
	ActionProfileUpdated Action = "PROFILE_UPDATED"
	ActionProfileDeleted Action = "PROFILE_DELETED"

	ActionReminderCreated Action = "REMINDER_CREATED"
	ActionReminderUpdated Action = "REMINDER_UPDATED"
	ActionReminderDeleted Action = "REMINDER_DELETED"

	ActionRoleCreated  Action = "ROLE_CREATED"
	ActionRoleUpdated  Action = "ROLE_UPDATED"
	ActionRoleDeleted  Action = "ROLE_DELETED"
	ActionRoleAssigned Action = "ROLE_ASSIGNED"
	ActionRoleRevoked  Action = "ROLE_REVOKED"
)

// TargetType is a symbolic code naming the kind of resource affected
type TargetType string

const (
	TargetStation  TargetType = "Station"
	TargetUser     TargetType = "User"
	TargetProfile  TargetType = "Profile"
	TargetBackup   TargetType = "Backup"
	TargetReminder TargetType = "Reminder"
	TargetRole     TargetType = "Role"
)

var knownActions = map[Action]bool{
	ActionStationCreated: true, ActionStationUpdated: true, ActionStationDeleted: true,
	ActionUserCreated: true, ActionUserUpdated: true, ActionUserDeleted: true,
	ActionUserActivated: true, ActionUserDeactivated: true,
	ActionBackupCreated: true, ActionBackupUpdated: true, ActionBackupDeleted: true,
	ActionBackupStatusChanged: true,
	ActionProfileCreated:      true, ActionProfileUpdated: true, ActionProfileDeleted: true,
	ActionReminderCreated: true, ActionReminderUpdated: true, ActionReminderDeleted: true,
	ActionRoleCreated: true, ActionRoleUpdated: true, ActionRoleDeleted: true,
	ActionRoleAssigned: true, ActionRoleRevoked: true,
}

var knownTargetTypes = map[TargetType]bool{
	TargetStation: true, TargetUser: true, TargetProfile: true,
	TargetBackup: true, TargetReminder: true, TargetRole: true,
}

var (
	actionPattern     = regexp.MustCompile(`^[A-Z][A-Z0-9]*(_[A-Z0-9]+)*$`)
	targetTypePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
)

// Known reports whether a is part of the built-in action vocabulary.
func (a Action) Known() bool { return knownActions[a] }

// Valid reports whether a is either a known action or a well-formed custom one.
func (a Action) Valid() bool { return a.Known() || actionPattern.MatchString(string(a)) }

// Known reports whether t is part of the built-in target type vocabulary.
func (t TargetType) Known() bool { return knownTargetTypes[t] }

// Valid reports whether t is either a known target type or a well-formed custom one.
func (t TargetType) Valid() bool { return t.Known() || targetTypePattern.MatchString(string(t)) }

// CustomAction registers an action code outside the built-in vocabulary.
// Codes must be SCREAMING_SNAKE_CASE; anything else is rejected here so that
// free-form strings never reach the event store.
func CustomAction(name string) (Action, error) {
	if !actionPattern.MatchString(name) {
		return "", fmt.Errorf("invalid action code %q: must match %s", name, actionPattern)
	}
	return Action(name), nil
}

// CustomTargetType registers a target type outside the built-in vocabulary.
func CustomTargetType(name string) (TargetType, error) {
	if !targetTypePattern.MatchString(name) {
		return "", fmt.Errorf("invalid target type %q: must match %s", name, targetTypePattern)
	}
	return TargetType(name), nil
}
