package catalog

// swagger:parameters findViewService
type _ struct {
	// Name of the view service including its version, for example HDFS{2.7.0}
	// in: path
	// required: true
	Name string `json:"name"`
}

// swagger:parameters findView
type _ struct {
	// in: path
	// required: true
	Name string `json:"name"`
}
