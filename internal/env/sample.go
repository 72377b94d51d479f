package env

// Sample represents one environmental measurement from the hat,
// suitable for JSON and MQTT.
type Sample struct {
	Temperature float64 `json:"temp_c"`       // °C, from the humidity chip when available
	Pressure    float64 `json:"pressure_hpa"` // hPa
	Humidity    float64 `json:"humidity_pct"` // percent relative humidity

	TemperatureValid bool `json:"temp_valid"`
	PressureValid    bool `json:"pressure_valid"`
	HumidityValid    bool `json:"humidity_valid"`
}
