package models

const (
	ViewIndex     = "index"
	ViewLogin     = "login"
	ViewRegister  = "register"
	ViewDashboard = "dashboard"
	ViewService   = "service"
	ViewAbout     = "about"
)

// View names the page a front end should render, with an optional user-facing error.
type View struct {
	View  string `json:"view"`
	Error string `json:"error,omitempty"`
}

type DashboardView struct {
	View            string           `json:"view"`
	Username        string           `json:"username"`
	WeatherData     any              `json:"weather_data"`
	Recommendations []Recommendation `json:"recommendations"`
	Error           string           `json:"error,omitempty"`
}
