package motion

import (
	"fmt"
	"time"

	"ble-pulse.klederson.com/internal/config"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// MPU9250Source reads the accelerometer of an MPU9250 wired over SPI.
type MPU9250Source struct {
	spiDev string
	csPin  string
	scale  float64 // raw LSB per g
	logger *zap.SugaredLogger
}

// NewMPU9250Source creates a source for the IMU on spiDev with chip select csPin.
func NewMPU9250Source(spiDev, csPin string, logger *zap.SugaredLogger) *MPU9250Source {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &MPU9250Source{
		spiDev: spiDev,
		csPin:  csPin,
		scale:  config.AccelScale,
		logger: logger,
	}
}

// Subscribe initializes the IMU and starts polling it. Any initialization
// failure is reported as ErrSensorUnavailable.
func (s *MPU9250Source) Subscribe(interval time.Duration) (Subscription, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: periph host init: %w", ErrSensorUnavailable, err)
	}

	cs := gpioreg.ByName(s.csPin)
	if cs == nil {
		return nil, fmt.Errorf("%w: CS pin %q not found", ErrSensorUnavailable, s.csPin)
	}

	tr, err := mpu9250.NewSpiTransport(s.spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("%w: SPI transport (%s): %w", ErrSensorUnavailable, s.spiDev, err)
	}

	imu, err := mpu9250.New(*tr)
	if err != nil {
		return nil, fmt.Errorf("%w: device creation: %w", ErrSensorUnavailable, err)
	}
	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("%w: initialization: %w", ErrSensorUnavailable, err)
	}
	if err := imu.Calibrate(); err != nil {
		s.logger.Warnf("mpu9250 calibration failed: %v", err)
	}

	s.logger.Infof("mpu9250 on %s ready, polling every %s", s.spiDev, interval)

	read := func(t time.Time) (Sample, error) {
		ax, err := imu.GetAccelerationX()
		if err != nil {
			return Sample{}, fmt.Errorf("mpu9250 acc X: %w", err)
		}
		ay, err := imu.GetAccelerationY()
		if err != nil {
			return Sample{}, fmt.Errorf("mpu9250 acc Y: %w", err)
		}
		az, err := imu.GetAccelerationZ()
		if err != nil {
			return Sample{}, fmt.Errorf("mpu9250 acc Z: %w", err)
		}
		return s.convert(ax, ay, az, t), nil
	}

	release := func() {
		s.logger.Infof("mpu9250 on %s released", s.spiDev)
	}

	return startPolling(interval, read, release), nil
}

// convert scales raw register counts to g.
func (s *MPU9250Source) convert(ax, ay, az int16, t time.Time) Sample {
	return Sample{
		X:  float64(ax) / s.scale,
		Y:  float64(ay) / s.scale,
		Z:  float64(az) / s.scale,
		At: t,
	}
}
