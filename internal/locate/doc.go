// Package locate discovers the game and xEdit installations when they are not
// configured: explicit paths win, then the working directory, then the
// Windows registry.
package locate
