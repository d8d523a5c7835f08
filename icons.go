package main

// iconSymbol maps an OpenWeatherMap icon code to a presentation glyph. The
// provider vocabulary is closed (day/night variants of nine conditions);
// anything outside it falls back to a generic symbol, so this function never
// fails.
func iconSymbol(code string) string {
	switch code {
	case "01d":
		return "☀️"
	case "01n":
		return "🌙"
	case "02d":
		return "🌤️"
	case "02n":
		return "☁️"
	case "03d", "03n":
		return "☁️"
	case "04d", "04n":
		return "☁️"
	case "09d", "09n":
		return "🌧️"
	case "10d", "10n":
		return "🌦️"
	case "11d", "11n":
		return "⛈️"
	case "13d", "13n":
		return "❄️"
	case "50d", "50n":
		return "🌫️"
	default:
		return "🌡️"
	}
}
