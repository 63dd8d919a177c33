package dto

// FeedbackQuery filters the caller's feedback inbox.
type FeedbackQuery struct {
	UnreadOnly     bool `form:"unreadOnly"`
	UnresolvedOnly bool `form:"unresolvedOnly"`
	Limit          int  `form:"limit"`
	Offset         int  `form:"offset"`
}
