package adminapi

// Init registers every admin API route on the server created by webserver.Init
func Init() {
	registerAuthRoutes()
	registerDashboardRoutes()
	registerProductRoutes()
	registerCategoryRoutes()
}
