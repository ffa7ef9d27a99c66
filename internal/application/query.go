package application

type ReportQueryFilter struct {
	Address  string
	MinScore *int
	MaxScore *int
	Limit    int
}
