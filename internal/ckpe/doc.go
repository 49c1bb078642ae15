// Package ckpe reads the Creation Kit extender configuration.
//
// Two file variants exist in the wild. Each maps its own key names onto the
// same Settings view (log redirection target and the reference handle limit
// patch), and Detect probes them in priority order.
package ckpe
