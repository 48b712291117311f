package client

// API bundles the resource clients over one BaseClient.
type API struct {
	Auth  Auth
	Dates Dates
	Users Users
}

func NewAPI(base *BaseClient) *API {
	return &API{
		Auth:  NewAuthClient(base),
		Dates: NewDatesClient(base),
		Users: NewUsersClient(base),
	}
}
