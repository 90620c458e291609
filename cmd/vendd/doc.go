/*
The vendd daemon serves prepaid credit vending and payment reconciliation.

Usage:
  vendd

  Flags understood by vendd:
    -c          Path to config file name.
                Alternatively the environment var $VENDDCFG can be used to set
                the configuration file name.

  Example:
    vendd -c /etc/vendd/vendd.config.json
*/
package main
