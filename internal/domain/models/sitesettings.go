// internal/domain/models/sitesettings.go
package models

// DefaultSiteName is shown in page titles and the public navigation bar.
const DefaultSiteName = "FreightDesk"
