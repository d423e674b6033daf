/*
Package vaultindex keeps the registry of vault names in a single file on disk.

The index only records which vaults exist. What a vault holds is stored
elsewhere, so the index is a derived convenience: a file that cannot be
recognized is reinitialized rather than reported.


Binary Format

The index file, named index.vuoto, uses the following binary format:

   8 bytes for the magic tag "VUOTOIDX"

   4 bytes for the format version stored as an unsigned int on 32bits encoded
   in little endian

   All other bytes are 16-byte records, one per slot. A record holds the UTF-8
   encoded vault name padded with zero bytes. A record made only of zero bytes
   is an empty slot, either never used or freed by a removal.

The record of slot N always starts at offset 12 + 16*N. Removing a vault zeroes
its record in place and the next added vault reuses the first empty slot, so
the file only grows when no slot is free and never shrinks.


Names

A vault name is 1 to 16 bytes long once UTF-8 encoded and cannot contain the
NUL byte, which is reserved for padding.


Recovery

A file with a wrong magic tag, another version or a truncated header is
truncated and rewritten with a fresh header, losing its records. A trailing
fragment shorter than a record, left by an interrupted write, is ignored on
open and overwritten by the next append.


Limitation

The index is meant for tens to hundreds of vaults: every Add and Remove scans
the file. It assumes a single writer; nothing prevents two processes from
corrupting each other's writes.
*/
package vaultindex
