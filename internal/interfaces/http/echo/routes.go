package echo

import e "github.com/labstack/echo/v4"

func RegisterRoutes(server *e.Echo, importHandler *ImportHandler, organizationHandler *OrganizationHandler) {
	api := server.Group("/api/v1")

	api.POST("/imports/organizations/preview", importHandler.PreviewOrganizations)
	api.POST("/imports/organizations", importHandler.ImportOrganizations)
	api.GET("/imports/:id", importHandler.GetImportJob)
	api.GET("/imports/:id/errors", importHandler.ListImportErrors)

	api.GET("/organizations/:id", organizationHandler.GetOrganizationByID)
}
