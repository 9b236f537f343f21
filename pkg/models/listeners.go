package models

// AdvertisingListener receives advertising state changes of a beacon controller
type AdvertisingListener interface {
	OnAdvertisingStateChanged(bool)
}

// AdvertisingListenerFunc adapts a plain func to AdvertisingListener
type AdvertisingListenerFunc func(bool)

// OnAdvertisingStateChanged calls f
func (f AdvertisingListenerFunc) OnAdvertisingStateChanged(advertising bool) { f(advertising) }
