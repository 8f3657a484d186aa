package ticketing

import "github.com/continu8/backoffice/internal/domain"

// EffectiveInternal resolves the internal flag stored for a new comment.
// Clients can never create internal comments, whatever they request.
func EffectiveInternal(requested bool, author domain.Role) bool {
	return requested && author != domain.RoleClient
}

// CanView reports whether a viewer with role may see the comment.
func CanView(c domain.Comment, viewer domain.Role) bool {
	if !c.IsInternal {
		return true
	}
	return viewer.IsStaff()
}

// VisibleComments filters comments down to what viewer may see, keeping
// order.
func VisibleComments(comments []domain.Comment, viewer domain.Role) []domain.Comment {
	visible := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		if CanView(c, viewer) {
			visible = append(visible, c)
		}
	}
	return visible
}

// NotifiesCreator reports whether a stored comment triggers a notification
// to the ticket creator. Internal notes never do.
func NotifiesCreator(c domain.Comment) bool {
	return !c.IsInternal
}
