package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// DayQuery selects a calendar day (YYYY-MM-DD). Empty means today.
type DayQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// WeekQuery selects the week containing the given day (YYYY-MM-DD). Empty means the current week.
type WeekQuery struct {
	Week string `form:"week" binding:"omitempty,datetime=2006-01-02"`
}
