package config

import "time"

const (
	// Peer identity shared by both devices
	IdentityToken = "MyWatchApp"

	// RSSI to distance estimation
	MeasuredPower = -59.0 // RSSI at 1 meter (dBm)
	PathLossExp   = 2.0   // Path loss exponent (N)

	// Motion detection
	SampleInterval = 100 * time.Millisecond // Accelerometer update interval
	ThresholdX     = 0.3                    // Delta (g) that counts as a jerk on X
	ThresholdY     = 0.3
	ThresholdZ     = 0.4
	Cooldown       = 1 * time.Second // Minimum time between events on one axis
	OffsetFactor   = 50.0            // Points of circle offset per g

	// Feedback pulse
	ExpandDuration   = 200 * time.Millisecond
	ContractDuration = 500 * time.Millisecond
	PeakScale        = 1.5
	PeakOpacity      = 1.0
	RestScale        = 1.0
	RestOpacity      = 0.0

	// Terminal display
	AspectRatio = 0.5 // Terminal char aspect correction (chars are ~2:1 tall)
	TargetFPS   = 30  // Target frames per second
	HistorySize = 60  // RSSI samples kept for the sparkline

	// MPU9250 over SPI
	SPIDevice  = "/dev/spidev0.0"
	CSPin      = "8"
	AccelScale = 16384.0 // LSB per g at the ±2g range

	// MQTT telemetry
	TopicPrefix    = "ble-pulse"
	MQTTClientID   = "ble-pulse"
	MQTTDisconnect = 250 // Quiesce milliseconds on disconnect

	// App
	AppName    = "BLE-PULSE"
	AppVersion = "1.0"
)
