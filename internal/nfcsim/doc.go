// Package nfcsim provides a scripted nfc.Reader.
//
// A Script describes the tags in the field and the order in which the
// platform reports events. Each session delivers its events on one worker
// goroutine, so a given script always produces the same callback order.
// The reader logs every tag operation it performs, which lets tests assert
// on what a transaction did to the hardware as well as on what it returned.
package nfcsim
