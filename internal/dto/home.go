package dto

type HomeSummary struct {
	UserName            string            `json:"userName"`
	CardlessWithdrawals int               `json:"cardlessWithdrawals"`
	WorkingATMs         int               `json:"workingAtms"`
	UpcomingBookings    int               `json:"upcomingBookings"`
	RecentTransactions  int               `json:"recentTransactions"`
	RecentActivity      []TransactionView `json:"recentActivity"`
	Notifications       int               `json:"notifications"`
}
