// Package policy implements the authorization rules for every resource
// kind. Decide is a pure function of (actor, action, resource snapshot);
// it never touches storage and never mutates anything.
package policy

// Role is the coarse permission level carried by an actor's credential.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
)

// Actor is the authenticated (or anonymous) identity behind a request.
// The zero value is the anonymous actor.
type Actor struct {
	ID   uint
	Role Role
}

// Authenticated reports whether the actor carries a validated identity.
func (a Actor) Authenticated() bool {
	return a.ID != 0 && a.Role != RoleAnonymous && a.Role != ""
}

// Elevated reports whether the actor has the elevated (admin) role.
func (a Actor) Elevated() bool {
	return a.Role == RoleAdmin
}

// Action enumerates the operations a policy decision covers.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource is a read-only snapshot of the entity (or prospective entity)
// a decision is about.
type Resource interface {
	Kind() string
}

// PostRef snapshots the policy-relevant fields of a post.
type PostRef struct {
	AuthorID  uint
	Published bool
}

func (PostRef) Kind() string { return "post" }

// TagRef snapshots a tag. Tags carry no owner; the struct is empty.
type TagRef struct{}

func (TagRef) Kind() string { return "tag" }

// CommentRef snapshots the policy-relevant fields of a comment.
type CommentRef struct {
	AuthorID uint
}

func (CommentRef) Kind() string { return "comment" }

// BookmarkRef snapshots the owner of a bookmark.
type BookmarkRef struct {
	OwnerID uint
}

func (BookmarkRef) Kind() string { return "bookmark" }

// LikeRef snapshots the owner of a like.
type LikeRef struct {
	OwnerID uint
}

func (LikeRef) Kind() string { return "like" }

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide applies the authorization rules:
//
//   - Create post/comment: any authenticated actor.
//   - Update/delete post/comment: the author, or an elevated actor.
//   - Read post: public unless unpublished, then author or elevated only.
//   - Read tag/comment: public.
//   - Create/update tag: any authenticated actor; delete tag: elevated
//     only (tags are shared vocabulary, deletion detaches many posts).
//   - Create/delete bookmark: the owning user only; nobody bookmarks on
//     behalf of someone else, elevated or not. Likes follow the same rule.
func Decide(actor Actor, action Action, res Resource) Decision {
	switch r := res.(type) {
	case PostRef:
		return decidePost(actor, action, r)
	case TagRef:
		return decideTag(actor, action)
	case CommentRef:
		return decideComment(actor, action, r)
	case BookmarkRef:
		return decideBookmark(actor, action, r)
	case LikeRef:
		return decideLike(actor, action, r)
	default:
		return Deny("unknown resource kind")
	}
}

func decidePost(actor Actor, action Action, post PostRef) Decision {
	switch action {
	case ActionRead:
		if post.Published {
			return Allow()
		}
		if actor.ID == post.AuthorID && actor.Authenticated() {
			return Allow()
		}
		if actor.Elevated() {
			return Allow()
		}
		return Deny("unpublished posts are visible to their author only")
	case ActionCreate:
		if !actor.Authenticated() {
			return Deny("authentication required to create posts")
		}
		return Allow()
	case ActionUpdate, ActionDelete:
		return requireAuthorOrElevated(actor, post.AuthorID, "post")
	default:
		return Deny("unsupported action on post")
	}
}

func decideTag(actor Actor, action Action) Decision {
	switch action {
	case ActionRead:
		return Allow()
	case ActionCreate, ActionUpdate:
		if !actor.Authenticated() {
			return Deny("authentication required to modify tags")
		}
		return Allow()
	case ActionDelete:
		if !actor.Elevated() {
			return Deny("tag deletion requires the elevated role")
		}
		return Allow()
	default:
		return Deny("unsupported action on tag")
	}
}

func decideComment(actor Actor, action Action, comment CommentRef) Decision {
	switch action {
	case ActionRead:
		return Allow()
	case ActionCreate:
		if !actor.Authenticated() {
			return Deny("authentication required to comment")
		}
		return Allow()
	case ActionUpdate, ActionDelete:
		return requireAuthorOrElevated(actor, comment.AuthorID, "comment")
	default:
		return Deny("unsupported action on comment")
	}
}

func decideBookmark(actor Actor, action Action, bm BookmarkRef) Decision {
	switch action {
	case ActionCreate, ActionDelete, ActionRead:
		if !actor.Authenticated() {
			return Deny("authentication required for bookmarks")
		}
		if actor.ID != bm.OwnerID {
			return Deny("bookmarks can only be managed by their owner")
		}
		return Allow()
	default:
		return Deny("unsupported action on bookmark")
	}
}

func decideLike(actor Actor, action Action, like LikeRef) Decision {
	switch action {
	case ActionCreate, ActionDelete:
		if !actor.Authenticated() {
			return Deny("authentication required to like posts")
		}
		if actor.ID != like.OwnerID {
			return Deny("likes can only be toggled by their owner")
		}
		return Allow()
	default:
		return Deny("unsupported action on like")
	}
}

func requireAuthorOrElevated(actor Actor, authorID uint, kind string) Decision {
	if !actor.Authenticated() {
		return Deny("authentication required to modify " + kind + "s")
	}
	if actor.ID == authorID || actor.Elevated() {
		return Allow()
	}
	return Deny("only the author may modify this " + kind)
}
