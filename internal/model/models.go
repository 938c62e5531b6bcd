package model

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Admin{},
		&Profile{},
		&CollabCall{},
		&CallKeyword{},
		&Interest{},
		&Bookmark{},
		&Ad{},
		&Feedback{},
		&FoundingMemberRequest{},
	}
}
