// File: utils/constants.go
package utils

import "time"

// CartKeyPrefix is the prefix used for Redis cart keys.
const CartKeyPrefix = "cart:"

// WizardKeyPrefix is the prefix used for persisted checkout wizard state.
const WizardKeyPrefix = "wizard:"

// CartEventChannel is the pub/sub channel for cart mutations of one identity.
const CartEventChannel = "events:cart:"

// BookingEventChannel is the pub/sub channel for confirmed bookings.
const BookingEventChannel = "events:booking"

// CartTTL is how long an untouched cart survives in Redis.
const CartTTL = 7 * 24 * time.Hour
