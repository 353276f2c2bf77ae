// Package services contains application services for the Crux client that
// work on the local vault only: digital nominees and the notification and
// security settings.
package services
