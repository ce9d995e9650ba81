package logging

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	// Color functions
	errorColor     = color.New(color.FgRed, color.Bold)
	warningColor   = color.New(color.FgYellow)
	successColor   = color.New(color.FgGreen)
	infoColor      = color.New(color.FgBlue)
	componentColor = color.New(color.FgCyan, color.Bold)
	bridgeColor    = color.New(color.FgMagenta)
	debugColor     = color.New(color.FgWhite, color.Faint)

	// Control flags
	colorsEnabled = true
)

// InitColors initializes the color system
func InitColors(enabled bool) {
	colorsEnabled = enabled

	// Respect NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
	}

	// Apply the resulting setting to the color package
	color.NoColor = !colorsEnabled
}

// AreColorsEnabled returns whether colors are currently enabled
func AreColorsEnabled() bool {
	return colorsEnabled
}

// Error prints an error message in red
func Error(format string, args ...interface{}) {
	if colorsEnabled {
		errorColor.Printf("ERROR: "+format+"\n", args...)
	} else {
		fmt.Printf("ERROR: "+format+"\n", args...)
	}
}

// Warning prints a warning message in yellow
func Warning(format string, args ...interface{}) {
	if colorsEnabled {
		warningColor.Printf("WARN: "+format+"\n", args...)
	} else {
		fmt.Printf("WARN: "+format+"\n", args...)
	}
}

// Success prints a success message in green
func Success(format string, args ...interface{}) {
	if colorsEnabled {
		successColor.Printf("✓ "+format+"\n", args...)
	} else {
		fmt.Printf("✓ "+format+"\n", args...)
	}
}

// Info prints an info message in blue
func Info(format string, args ...interface{}) {
	if colorsEnabled {
		infoColor.Printf(format+"\n", args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}

// Debug prints a debug message in faint white
func Debug(format string, args ...interface{}) {
	if colorsEnabled {
		debugColor.Printf(format+"\n", args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}

// Component prints a subsystem-tagged message (e.g. "election", "wire",
// "daemon") with the tag in cyan.
func Component(component string, format string, args ...interface{}) {
	if colorsEnabled {
		componentColor.Printf("[%s] ", component)
		fmt.Printf(format+"\n", args...)
	} else {
		fmt.Printf("[%s] "+format+"\n", append([]interface{}{component}, args...)...)
	}
}

// Bridge prints a bridge-tagged message with the bridge's MAC in magenta.
func Bridge(mac string, format string, args ...interface{}) {
	if colorsEnabled {
		bridgeColor.Printf("[%s] ", mac)
		fmt.Printf(format+"\n", args...)
	} else {
		fmt.Printf("[%s] "+format+"\n", append([]interface{}{mac}, args...)...)
	}
}

// ComponentDebug prints a debug message for a specific subsystem, gated
// by its configured debug level.
func ComponentDebug(component string, debugLevel int, minLevel int, format string, args ...interface{}) {
	if debugLevel >= minLevel {
		Component(component, format, args...)
	}
}

// BridgeDebug prints a debug message for a specific bridge, gated by its
// configured debug level.
func BridgeDebug(mac string, debugLevel int, minLevel int, format string, args ...interface{}) {
	if debugLevel >= minLevel {
		Bridge(mac, format, args...)
	}
}

// Sprintf returns a colored string without printing (useful for building messages)
func Sprintf(colorType string, format string, args ...interface{}) string {
	var c *color.Color
	switch colorType {
	case "error":
		c = errorColor
	case "warning":
		c = warningColor
	case "success":
		c = successColor
	case "info":
		c = infoColor
	case "component":
		c = componentColor
	case "bridge":
		c = bridgeColor
	case "debug":
		c = debugColor
	default:
		return fmt.Sprintf(format, args...)
	}

	if colorsEnabled {
		return c.Sprintf(format, args...)
	}
	return fmt.Sprintf(format, args...)
}

// ErrorString returns a colored error string
func ErrorString(s string) string {
	if colorsEnabled {
		return errorColor.Sprint(s)
	}
	return s
}

// WarningString returns a colored warning string
func WarningString(s string) string {
	if colorsEnabled {
		return warningColor.Sprint(s)
	}
	return s
}

// SuccessString returns a colored success string
func SuccessString(s string) string {
	if colorsEnabled {
		return successColor.Sprint(s)
	}
	return s
}

// InfoString returns a colored info string
func InfoString(s string) string {
	if colorsEnabled {
		return infoColor.Sprint(s)
	}
	return s
}

// ComponentString returns a colored component-tag string
func ComponentString(s string) string {
	if colorsEnabled {
		return componentColor.Sprint(s)
	}
	return s
}

// BridgeString returns a colored bridge-tag string
func BridgeString(s string) string {
	if colorsEnabled {
		return bridgeColor.Sprint(s)
	}
	return s
}
