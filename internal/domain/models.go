package domain

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&User{},
		&Workspace{},
		&WorkspaceMember{},
		&WorkspaceInvitation{},
		&Project{},
		&ProjectMember{},
		&Tag{},
		&Task{},
		&Timesheet{},
		&Comment{},
	}
}
